package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapMode determines how the request amount is interpreted.
type SwapMode string

const (
	// ModeExactIn: amount is the exact input, output is estimated.
	ModeExactIn SwapMode = "EXACT_IN"
	// ModeExactOut: amount is the exact output desired, input is estimated.
	ModeExactOut SwapMode = "EXACT_OUT"
)

// QuoteStatus is the lifecycle state of a persisted quote.
type QuoteStatus string

const (
	QuoteStatusActive    QuoteStatus = "active"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusUsed      QuoteStatus = "used"
	QuoteStatusCancelled QuoteStatus = "cancelled"
)

// Hop is a single pool traversal: tokenIn -> tokenOut at a fee tier.
type Hop struct {
	TokenIn  common.Address
	TokenOut common.Address
	Fee      uint32 // fee tier in hundredths of a bip (500, 3000, 10000)
}

// Candidate is an ordered hop list considered by the router. Adjacent hops
// share the connecting token; first TokenIn / last TokenOut are the overall
// endpoints. Candidates are transient and never persisted.
type Candidate struct {
	Hops []Hop
}

func (c Candidate) TokenIn() common.Address {
	return c.Hops[0].TokenIn
}

func (c Candidate) TokenOut() common.Address {
	return c.Hops[len(c.Hops)-1].TokenOut
}

// Quote is a priced trade. Exactly one of AmountOutMinimum / AmountInMaximum
// is set, depending on Mode.
type Quote struct {
	ID      string
	ChainID uint64

	TokenIn  string // lowercase 20-byte hex
	TokenOut string // lowercase 20-byte hex

	AmountIn  *big.Int
	AmountOut *big.Int

	Mode  SwapMode
	Route []Hop
	Path  []byte // packed token|fee|token wire encoding

	AmountOutMinimum *big.Int // exact-in only
	AmountInMaximum  *big.Int // exact-out only

	PriceImpactPct string // percentage with two decimals, "0" when unknown
	GasEstimate    *big.Int

	CreatedAt time.Time
	ExpiresAt time.Time
	Status    QuoteStatus

	SwapID string // set when a swap consumed this quote
}

// Expired reports whether the quote is past its expiry at the given instant.
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}
