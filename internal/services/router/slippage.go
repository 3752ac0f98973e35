package router

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/thehyperflames/swap-gateway/internal/common"
)

// SlippageBps converts a percentage with up to two decimals (0.1 .. 50.0)
// into basis points. Values outside [10, 5000] bps return ErrInvalidSlippage.
func SlippageBps(pct float64) (int64, error) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, common.ErrInvalidSlippage
	}
	bps := int64(math.Round(pct * 100))
	if bps < common.MinSlippageBps || bps > common.MaxSlippageBps {
		return 0, common.ErrInvalidSlippage
	}
	return bps, nil
}

// MinAmountOut is the exact-in protection bound:
// amountOut * (10000 - bps) / 10000, truncating.
func MinAmountOut(amountOut *big.Int, bps int64) *big.Int {
	return applyBps(amountOut, common.BpsDenom-bps)
}

// MaxAmountIn is the exact-out protection bound:
// amountIn * (10000 + bps) / 10000, truncating.
func MaxAmountIn(amountIn *big.Int, bps int64) *big.Int {
	return applyBps(amountIn, common.BpsDenom+bps)
}

// applyBps computes amount * numerator / 10000 with truncation. Fixed-width
// math on the request path, big.Int fallback for out-of-range values.
func applyBps(amount *big.Int, numerator int64) *big.Int {
	if v, overflow := uint256.FromBig(amount); !overflow {
		n := uint256.NewInt(uint64(numerator))
		d := uint256.NewInt(common.BpsDenom)
		if res, over := new(uint256.Int).MulDivOverflow(v, n, d); !over {
			return res.ToBig()
		}
	}

	v := new(big.Int).Mul(amount, big.NewInt(numerator))
	return v.Quo(v, big.NewInt(common.BpsDenom))
}
