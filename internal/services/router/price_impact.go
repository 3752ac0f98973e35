package router

import (
	"context"
	"math"
	"math/big"
	"strconv"

	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// PriceFeed resolves a token's USD price. The second return is false when no
// price is known; impact falls back to the "0" sentinel in that case.
type PriceFeed interface {
	PriceUSD(ctx context.Context, token string) (float64, bool)
}

// Impact severity levels for monitoring and response warnings.
const (
	ImpactNone     = "none"
	ImpactLow      = "low"
	ImpactModerate = "moderate"
	ImpactHigh     = "high"
	ImpactExtreme  = "extreme"
)

// PriceImpact compares the quoted output against the USD-implied fair output.
// Returns the impact percentage with two decimals, never negative. When
// either side has no USD price the sentinel "0" is returned: unknown is not
// the same as zero impact, and callers must not block on it.
func PriceImpact(ctx context.Context, feed PriceFeed, tokenIn, tokenOut string, amountIn, amountOut *big.Int, decimalsIn, decimalsOut uint8) string {
	if feed == nil || amountIn == nil || amountOut == nil || amountIn.Sign() <= 0 {
		return "0"
	}
	priceIn, okIn := feed.PriceUSD(ctx, tokenIn)
	priceOut, okOut := feed.PriceUSD(ctx, tokenOut)
	if !okIn || !okOut || priceIn <= 0 || priceOut <= 0 {
		return "0"
	}

	humanIn := toFloat(amountIn, decimalsIn)
	humanOut := toFloat(amountOut, decimalsOut)

	expectedOut := humanIn * priceIn / priceOut
	if expectedOut <= 0 {
		return "0"
	}

	impact := (expectedOut - humanOut) / expectedOut * 100
	if impact < 0 {
		impact = 0
	}

	metrics.PriceImpact.WithLabelValues(ImpactSeverity(impact)).Observe(impact * 100)
	return strconv.FormatFloat(impact, 'f', 2, 64)
}

// ImpactSeverity buckets an impact percentage for metrics and warnings.
func ImpactSeverity(pct float64) string {
	switch {
	case pct < 0.1:
		return ImpactNone
	case pct < 1:
		return ImpactLow
	case pct < 3:
		return ImpactModerate
	case pct < 10:
		return ImpactHigh
	default:
		return ImpactExtreme
	}
}

// ImpactWarning returns a user-facing warning for severe impact, or "".
func ImpactWarning(pct float64) string {
	switch ImpactSeverity(pct) {
	case ImpactHigh:
		return "High price impact. Consider reducing trade size."
	case ImpactExtreme:
		return "Extreme price impact. This trade will move the market significantly."
	default:
		return ""
	}
}

func toFloat(v *big.Int, decimals uint8) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f / math.Pow10(int(decimals))
}
