package http

import (
	"github.com/gin-gonic/gin"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/engine"
	"github.com/thehyperflames/swap-gateway/internal/http/httputil"
)

type TokenHandler struct {
	engineSvc *engine.Service
}

func NewTokenHandler(engineSvc *engine.Service) *TokenHandler {
	return &TokenHandler{engineSvc: engineSvc}
}

func (h *TokenHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listTokens)
	admin.POST("", h.addToken)
}

func (h *TokenHandler) Root() string {
	return "/tokens"
}

// AddTokenRequest allow-lists a token at runtime
type AddTokenRequest struct {
	Address  string `json:"address" binding:"required" example:"0x514910771AF9Ca656af840dff83E8264EcF986CA"`
	Symbol   string `json:"symbol" binding:"required" example:"LINK"`
	Name     string `json:"name" example:"ChainLink Token"`
	Decimals uint8  `json:"decimals" binding:"required" example:"18"`
}

// @Summary List allow-listed tokens
// @Description Tokens the gateway will quote, with their decimals.
// @Tags tokens
// @Produce json
// @Success 200 {object} httputil.Response "Token list"
// @Router /api/v1/tokens [get]
func (h *TokenHandler) listTokens(c *gin.Context) {
	httputil.Success(c, h.engineSvc.Tokens())
}

// @Summary Allow-list a token
// @Description Add a token to the allow-list without a restart.
// @Tags tokens
// @Accept json
// @Produce json
// @Param request body AddTokenRequest true "Token definition"
// @Success 200 {object} httputil.Response
// @Failure 400 {object} httputil.Response "Invalid address"
// @Router /api/v1/admin/tokens [post]
func (h *TokenHandler) addToken(c *gin.Context) {
	var req AddTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !ethcommon.IsHexAddress(req.Address) {
		httputil.BadRequest(c, "invalid token address")
		return
	}

	h.engineSvc.AllowToken(ethcommon.HexToAddress(req.Address), req.Symbol, req.Name, req.Decimals)
	httputil.Success(c, gin.H{"added": req.Symbol})
}
