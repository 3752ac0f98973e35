package router

import (
	"context"
	"math/big"
	"testing"
)

type stubFeed struct {
	prices map[string]float64
}

func (s *stubFeed) PriceUSD(_ context.Context, token string) (float64, bool) {
	p, ok := s.prices[token]
	return p, ok
}

func TestPriceImpact(t *testing.T) {
	weth := "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	usdc := "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

	feed := &stubFeed{prices: map[string]float64{
		weth: 3000,
		usdc: 1,
	}}

	tests := []struct {
		name      string
		amountIn  *big.Int // 18 decimals
		amountOut *big.Int // 6 decimals
		want      string
	}{
		// 1 WETH at $3000 implies 3000 USDC out; got 2985 -> 0.5%.
		{"half percent", big.NewInt(1e18), big.NewInt(2_985_000_000), "0.50"},
		// Exactly fair.
		{"no impact", big.NewInt(1e18), big.NewInt(3_000_000_000), "0.00"},
		// Better than fair clamps to zero.
		{"favorable clamps", big.NewInt(1e18), big.NewInt(3_100_000_000), "0.00"},
		// 10% worse.
		{"ten percent", big.NewInt(1e18), big.NewInt(2_700_000_000), "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceImpact(context.Background(), feed, weth, usdc, tt.amountIn, tt.amountOut, 18, 6)
			if got != tt.want {
				t.Errorf("PriceImpact = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceImpactUnknownPrice(t *testing.T) {
	weth := "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	unknown := "0x1000000000000000000000000000000000000001"

	feed := &stubFeed{prices: map[string]float64{weth: 3000}}

	if got := PriceImpact(context.Background(), feed, weth, unknown, big.NewInt(1e18), big.NewInt(1), 18, 6); got != "0" {
		t.Errorf("unknown output price: got %q, want sentinel \"0\"", got)
	}
	if got := PriceImpact(context.Background(), feed, unknown, weth, big.NewInt(1e18), big.NewInt(1), 18, 18); got != "0" {
		t.Errorf("unknown input price: got %q, want sentinel \"0\"", got)
	}
	if got := PriceImpact(context.Background(), nil, weth, weth, big.NewInt(1), big.NewInt(1), 18, 18); got != "0" {
		t.Errorf("nil feed: got %q, want sentinel \"0\"", got)
	}
}

func TestImpactSeverity(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, ImpactNone},
		{0.05, ImpactNone},
		{0.5, ImpactLow},
		{2, ImpactModerate},
		{5, ImpactHigh},
		{15, ImpactExtreme},
	}
	for _, tt := range tests {
		if got := ImpactSeverity(tt.pct); got != tt.want {
			t.Errorf("ImpactSeverity(%v) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestImpactWarning(t *testing.T) {
	if w := ImpactWarning(0.5); w != "" {
		t.Errorf("low impact should not warn, got %q", w)
	}
	if w := ImpactWarning(5); w == "" {
		t.Error("high impact should warn")
	}
	if w := ImpactWarning(50); w == "" {
		t.Error("extreme impact should warn")
	}
}
