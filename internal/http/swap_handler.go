package http

import (
	"github.com/gin-gonic/gin"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/engine"
	"github.com/thehyperflames/swap-gateway/internal/http/httputil"
)

type SwapHandler struct {
	engineSvc *engine.Service
}

func NewSwapHandler(engineSvc *engine.Service) *SwapHandler {
	return &SwapHandler{engineSvc: engineSvc}
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.postSwap)
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

// SwapRequest asks for an unsigned transaction built from an issued quote
type SwapRequest struct {
	// Quote ID returned by a previous quote call
	QuoteID string `json:"quoteId" binding:"required" example:"7b0e9f3a-8f2c-4c15-9f6e-1f4f0a5b2c3d"`

	// Address receiving the swap output
	Recipient string `json:"recipient" binding:"required" example:"0x3000000000000000000000000000000000000003"`

	// Optional unix-seconds transaction deadline. Default: 10 minutes ahead
	Deadline int64 `json:"deadline,omitempty" example:"1756624200"`
}

// @Summary Build a swap transaction
// @Description Turn an active quote into an unsigned SwapRouter transaction. The quote
// @Description is consumed: building twice from the same quote returns 409.
// @Description The response carries calldata, target contract and the slippage bounds
// @Description baked into the calldata; the caller signs and broadcasts it.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapRequest true "Swap build parameters"
// @Success 200 {object} httputil.Response{data=domain.SwapBuildResponse} "Unsigned transaction"
// @Failure 400 {object} httputil.Response "Invalid recipient or deadline"
// @Failure 404 {object} httputil.Response "Unknown quote ID"
// @Failure 409 {object} httputil.Response "Quote already used"
// @Failure 410 {object} httputil.Response "Quote expired"
// @Router /api/v1/swap [post]
func (h *SwapHandler) postSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !ethcommon.IsHexAddress(req.Recipient) {
		httputil.BadRequest(c, "invalid recipient address")
		return
	}

	resp, err := h.engineSvc.BuildSwap(domain.SwapBuildRequest{
		QuoteID:   req.QuoteID,
		Recipient: ethcommon.HexToAddress(req.Recipient),
		Deadline:  req.Deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, resp)
}
