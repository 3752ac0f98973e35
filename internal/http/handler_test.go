package http

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", common.ErrInvalidInput, 400},
		{"token not allowed", common.ErrTokenNotAllowed, 400},
		{"invalid slippage", common.ErrInvalidSlippage, 400},
		{"no route", common.ErrNoRouteFound, 400},
		{"quote not found", common.ErrQuoteNotFound, 404},
		{"quote expired", common.ErrQuoteExpired, 410},
		{"http error passthrough", common.HTTPErrorResourceConflict("quote already used"), 409},
		{"unknown", common.ErrPersistence, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if success, _ := resp["success"].(bool); success {
				t.Error("error responses must set success=false")
			}
			if resp["error"] == "" {
				t.Error("error responses must carry a message")
			}
		})
	}
}

func TestBuildQuoteResponse(t *testing.T) {
	now := time.Now()
	q := &domain.Quote{
		ID:               "q-1",
		ChainID:          1,
		TokenIn:          "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		TokenOut:         "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		AmountIn:         big.NewInt(1e18),
		AmountOut:        big.NewInt(3_000_000_000),
		Mode:             domain.ModeExactIn,
		Route:            []domain.Hop{{TokenIn: common.WETH, TokenOut: common.USDC, Fee: 3000}},
		Path:             []byte{0xab, 0xcd},
		AmountOutMinimum: big.NewInt(2_985_000_000),
		PriceImpactPct:   "0.50",
		GasEstimate:      big.NewInt(150000),
		CreatedAt:        now,
		ExpiresAt:        now.Add(30 * time.Second),
		Status:           domain.QuoteStatusActive,
	}

	resp := buildQuoteResponse(q, true)

	if resp.QuoteID != "q-1" || !resp.Cached {
		t.Errorf("identity: %+v", resp)
	}
	if resp.AmountIn != "1000000000000000000" || resp.AmountOut != "3000000000" {
		t.Errorf("amounts: %s / %s", resp.AmountIn, resp.AmountOut)
	}
	if resp.AmountOutMinimum != "2985000000" || resp.AmountInMaximum != "" {
		t.Errorf("bounds: min=%s max=%s", resp.AmountOutMinimum, resp.AmountInMaximum)
	}
	if resp.Path != "0xabcd" {
		t.Errorf("path = %s", resp.Path)
	}
	if resp.PriceImpactSeverity != "low" {
		t.Errorf("severity = %s, want low for 0.50%%", resp.PriceImpactSeverity)
	}
	if len(resp.Route) != 1 || resp.Route[0].Fee != 3000 {
		t.Errorf("route: %+v", resp.Route)
	}
	if resp.ExpiresAt != q.ExpiresAt.Unix() {
		t.Errorf("expiresAt = %d", resp.ExpiresAt)
	}
}

func TestBuildQuoteResponseUnknownImpact(t *testing.T) {
	now := time.Now()
	q := &domain.Quote{
		ID:             "q-2",
		AmountIn:       big.NewInt(1),
		AmountOut:      big.NewInt(1),
		Mode:           domain.ModeExactIn,
		PriceImpactPct: "0",
		CreatedAt:      now,
		ExpiresAt:      now,
	}

	resp := buildQuoteResponse(q, false)
	if resp.PriceImpactPct != "0" {
		t.Errorf("impact = %s", resp.PriceImpactPct)
	}
	if resp.PriceImpactSeverity != "none" || resp.PriceImpactWarning != "" {
		t.Errorf("unknown impact should read as none/no warning, got %s/%q",
			resp.PriceImpactSeverity, resp.PriceImpactWarning)
	}
}
