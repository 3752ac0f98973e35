package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/http/httputil"
)

// respondError maps engine errors onto HTTP statuses. Unmapped errors are
// treated as internal and their details withheld.
func respondError(c *gin.Context, err error) {
	var httpErr *common.HttpError
	if errors.As(err, &httpErr) {
		httputil.Error(c, httpErr.StatusCode, httpErr.Message)
		return
	}

	switch {
	case errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrTokenNotAllowed),
		errors.Is(err, common.ErrInvalidSlippage),
		errors.Is(err, common.ErrNoRouteFound):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, common.ErrQuoteNotFound):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, common.ErrQuoteExpired):
		httputil.Gone(c, err.Error())
	default:
		httputil.InternalError(c, "internal error")
	}
}
