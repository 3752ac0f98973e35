package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapBuildRequest asks the builder to populate an unsigned swap transaction
// from a previously issued quote.
type SwapBuildRequest struct {
	QuoteID   string
	Recipient common.Address
	Deadline  int64 // unix seconds, 0 = builder default
}

// SwapBuildResponse is an unsigned transaction payload ready for signing.
type SwapBuildResponse struct {
	SwapID string `json:"swapId"`

	To    string `json:"to"`
	Data  string `json:"data"` // 0x-prefixed calldata
	Value string `json:"value"`

	GasEstimate string `json:"gasEstimate,omitempty"`
	GasPriceWei string `json:"gasPriceWei,omitempty"`

	AmountIn         string `json:"amountIn"`
	AmountOut        string `json:"amountOut"`
	AmountOutMinimum string `json:"amountOutMinimum,omitempty"`
	AmountInMaximum  string `json:"amountInMaximum,omitempty"`

	Deadline int64 `json:"deadline"`
}

// EvalResult is the outcome of quoting one candidate against the oracle.
// Err is set when the candidate failed; failed candidates carry no amount.
type EvalResult struct {
	Candidate Candidate
	Index     int // position in generation order, tie-break key

	Amount      *big.Int // amountOut (exact-in) or amountIn (exact-out)
	GasEstimate *big.Int

	Err error
}
