package http

import (
	"encoding/hex"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/engine"
	"github.com/thehyperflames/swap-gateway/internal/http/httputil"
	"github.com/thehyperflames/swap-gateway/internal/services/router"
)

type QuoteHandler struct {
	engineSvc *engine.Service
}

func NewQuoteHandler(engineSvc *engine.Service) *QuoteHandler {
	return &QuoteHandler{engineSvc: engineSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.postQuote)
	pub.POST("/exact-out", h.postQuoteExactOut)
	pub.GET("/:quoteId", h.getQuote)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest represents the parameters for requesting a swap quote
type QuoteRequest struct {
	// Input token contract address (20-byte hex)
	TokenIn string `json:"tokenIn" binding:"required" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`

	// Output token contract address (20-byte hex)
	TokenOut string `json:"tokenOut" binding:"required" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`

	// Human-readable decimal amount. Exact-in: the input amount.
	// Exact-out: the desired output amount.
	// Example: "1.0" for 1 WETH, "3000" for 3000 USDC
	Amount string `json:"amount" binding:"required" example:"1.0"`

	// Slippage tolerance as a percentage with up to two decimals.
	// Allowed range: 0.1 to 50.0
	SlippagePct float64 `json:"slippagePct" binding:"required" example:"0.5"`

	// Optional fee tier restriction (500, 3000 or 10000). Omit to let the
	// router consider every tier and two-hop routes.
	FeeTier uint32 `json:"feeTier,omitempty" example:"3000"`

	// Optional quote lifetime in seconds. Omit for the server default;
	// values above 300 are clamped.
	TTLSec int `json:"ttlSec,omitempty" example:"30"`

	// Optional wallet address, recorded for auditing
	UserAddress string `json:"userAddress,omitempty" example:"0x3000000000000000000000000000000000000003"`
}

// HopInfo describes a single hop in the swap route
type HopInfo struct {
	TokenIn  string `json:"tokenIn" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`
	TokenOut string `json:"tokenOut" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`

	// Pool fee tier in hundredths of a bip
	Fee uint32 `json:"fee" example:"3000"`
}

// QuoteResponse contains the priced route and slippage-protected bounds
type QuoteResponse struct {
	QuoteID string `json:"quoteId" example:"7b0e9f3a-8f2c-4c15-9f6e-1f4f0a5b2c3d"`
	ChainID uint64 `json:"chainId" example:"1"`

	TokenIn  string `json:"tokenIn" example:"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"`
	TokenOut string `json:"tokenOut" example:"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"`

	// Amounts in smallest token units
	AmountIn  string `json:"amountIn" example:"1000000000000000000"`
	AmountOut string `json:"amountOut" example:"3000000000"`

	Mode string `json:"mode" enums:"EXACT_IN,EXACT_OUT" example:"EXACT_IN"`

	Route []HopInfo `json:"route"`

	// Packed token|fee|token path the swap calldata will use, hex encoded
	Path string `json:"path" example:"0xc02aaa...0bb8...eb48"`

	// Exact-in only: minimum acceptable output after slippage
	AmountOutMinimum string `json:"amountOutMinimum,omitempty" example:"2985000000"`

	// Exact-out only: maximum acceptable input after slippage
	AmountInMaximum string `json:"amountInMaximum,omitempty" example:"1005000000000000000"`

	// USD-referenced price impact percentage, "0" when no USD price is known
	PriceImpactPct      string `json:"priceImpactPct" example:"0.50"`
	PriceImpactSeverity string `json:"priceImpactSeverity" enums:"none,low,moderate,high,extreme" example:"low"`
	PriceImpactWarning  string `json:"priceImpactWarning,omitempty"`

	GasEstimate string `json:"gasEstimate,omitempty" example:"150000"`

	ExpiresAt int64  `json:"expiresAt" example:"1756623600"`
	Status    string `json:"status" example:"active"`

	// True when pricing was served from the route cache
	Cached bool `json:"cached"`
}

func buildQuoteResponse(q *domain.Quote, cached bool) QuoteResponse {
	resp := QuoteResponse{
		QuoteID:        q.ID,
		ChainID:        q.ChainID,
		TokenIn:        q.TokenIn,
		TokenOut:       q.TokenOut,
		AmountIn:       q.AmountIn.String(),
		AmountOut:      q.AmountOut.String(),
		Mode:           string(q.Mode),
		Path:           "0x" + hex.EncodeToString(q.Path),
		PriceImpactPct: q.PriceImpactPct,
		ExpiresAt:      q.ExpiresAt.Unix(),
		Status:         string(q.Status),
		Cached:         cached,
	}
	if q.AmountOutMinimum != nil {
		resp.AmountOutMinimum = q.AmountOutMinimum.String()
	}
	if q.AmountInMaximum != nil {
		resp.AmountInMaximum = q.AmountInMaximum.String()
	}
	if q.GasEstimate != nil {
		resp.GasEstimate = q.GasEstimate.String()
	}

	var impact float64
	if q.PriceImpactPct != "0" {
		impact, _ = strconv.ParseFloat(q.PriceImpactPct, 64)
	}
	resp.PriceImpactSeverity = router.ImpactSeverity(impact)
	resp.PriceImpactWarning = router.ImpactWarning(impact)

	for _, hop := range q.Route {
		resp.Route = append(resp.Route, HopInfo{
			TokenIn:  hop.TokenIn.Hex(),
			TokenOut: hop.TokenOut.Hex(),
			Fee:      hop.Fee,
		})
	}
	return resp
}

func (h *QuoteHandler) handleQuote(c *gin.Context, mode domain.SwapMode) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	q, cached, err := h.engineSvc.Quote(c.Request.Context(), engine.QuoteParams{
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		Amount:      req.Amount,
		Mode:        mode,
		SlippagePct: req.SlippagePct,
		FeeTier:     req.FeeTier,
		TTLSec:      req.TTLSec,
		IP:          c.ClientIP(),
		UserAddress: req.UserAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	httputil.Success(c, buildQuoteResponse(q, cached))
}

// @Summary Get an exact-in swap quote
// @Description Price a swap where the input amount is fixed and the output is estimated.
// @Description The router evaluates the direct pool at every fee tier plus two-hop routes
// @Description through the configured anchor tokens, and returns the best route with a
// @Description slippage-protected minimum output. The quote stays redeemable until expiresAt.
// @Tags quote
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote parameters"
// @Success 200 {object} httputil.Response{data=QuoteResponse} "Priced quote"
// @Failure 400 {object} httputil.Response "Invalid parameters, token not allow-listed, slippage out of range, or no route for the pair"
// @Router /api/v1/quote [post]
func (h *QuoteHandler) postQuote(c *gin.Context) {
	h.handleQuote(c, domain.ModeExactIn)
}

// @Summary Get an exact-out swap quote
// @Description Price a swap where the desired output amount is fixed and the required
// @Description input is estimated, with a slippage-protected maximum input.
// @Tags quote
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote parameters (amount is the desired output)"
// @Success 200 {object} httputil.Response{data=QuoteResponse} "Priced quote"
// @Failure 400 {object} httputil.Response "Invalid parameters, token not allow-listed, slippage out of range, or no route for the pair"
// @Router /api/v1/quote/exact-out [post]
func (h *QuoteHandler) postQuoteExactOut(c *gin.Context) {
	h.handleQuote(c, domain.ModeExactOut)
}

// @Summary Look up a previously issued quote
// @Description Fetch a quote by ID. Expired quotes return 410 Gone.
// @Tags quote
// @Produce json
// @Param quoteId path string true "Quote ID"
// @Success 200 {object} httputil.Response{data=QuoteResponse} "Stored quote"
// @Failure 404 {object} httputil.Response "Unknown quote ID"
// @Failure 410 {object} httputil.Response "Quote expired"
// @Router /api/v1/quote/{quoteId} [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	q, err := h.engineSvc.GetQuote(c.Param("quoteId"))
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, buildQuoteResponse(q, false))
}
