// Package router prices trades: it enumerates route candidates, fans them
// out to the quote oracle, and deterministically selects the best route.
package router

import (
	"context"
	"math/big"
	"slices"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
	"github.com/thehyperflames/swap-gateway/internal/services/tokens"
)

// PriceRequest is a validated pricing request. Token addresses are lowercase
// hex from the allow-list.
type PriceRequest struct {
	TokenIn  string
	TokenOut string
	Amount   *big.Int
	Mode     domain.SwapMode

	// Fee restricts routing to the single-hop pool at this tier. 0 means
	// consider every candidate.
	Fee uint32
}

// Router prices requests through the oracle with a short-lived result cache.
type Router struct {
	evaluator *Evaluator
	cache     *QuoteCache
	feed      PriceFeed
	registry  *tokens.Registry

	chainID     uint64
	anchors     []ethcommon.Address
	evalTimeout time.Duration
}

func NewRouter(evaluator *Evaluator, cache *QuoteCache, feed PriceFeed, registry *tokens.Registry, chainID uint64, anchors []ethcommon.Address, evalTimeout time.Duration) *Router {
	return &Router{
		evaluator:   evaluator,
		cache:       cache,
		feed:        feed,
		registry:    registry,
		chainID:     chainID,
		anchors:     anchors,
		evalTimeout: evalTimeout,
	}
}

// Price resolves the best route for a request. The bool reports whether the
// result came from cache. Validation failures return before any oracle call.
func (r *Router) Price(ctx context.Context, req PriceRequest) (*PricedRoute, bool, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, false, common.ErrInvalidInput
	}
	if req.TokenIn == req.TokenOut {
		return nil, false, common.ErrInvalidInput
	}
	if req.Fee != 0 && !slices.Contains(common.FeeTiers, req.Fee) {
		return nil, false, common.ErrInvalidInput
	}

	fp := Fingerprint(r.chainID, req.TokenIn, req.TokenOut, req.Fee, req.Amount, req.Mode)
	if cached := r.cache.Get(fp); cached != nil {
		return cached, true, nil
	}

	tokenIn := ethcommon.HexToAddress(req.TokenIn)
	tokenOut := ethcommon.HexToAddress(req.TokenOut)

	var candidates []domain.Candidate
	if req.Fee != 0 {
		candidates = []domain.Candidate{{Hops: []domain.Hop{
			{TokenIn: tokenIn, TokenOut: tokenOut, Fee: req.Fee},
		}}}
	} else {
		candidates = GenerateCandidates(tokenIn, tokenOut, r.anchors)
	}

	evalCtx, cancel := context.WithTimeout(ctx, r.evalTimeout)
	defer cancel()

	results := r.evaluator.Evaluate(evalCtx, candidates, req.Amount, req.Mode)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	metrics.CandidatesEvaluated.Observe(float64(len(results)))
	metrics.CandidatesFailed.Observe(float64(failed))
	if failed > 0 {
		log.Debug().
			Int("candidates", len(results)).
			Int("failed", failed).
			Str("token_in", req.TokenIn).
			Str("token_out", req.TokenOut).
			Msg("[router] Some candidates failed evaluation")
	}

	best, err := SelectBest(results, req.Mode)
	if err != nil {
		return nil, false, err
	}

	priced := r.buildPriced(ctx, req, best)
	r.cache.Set(fp, priced)
	return priced, false, nil
}

func (r *Router) buildPriced(ctx context.Context, req PriceRequest, best domain.EvalResult) *PricedRoute {
	priced := &PricedRoute{
		Route:       best.Candidate.Hops,
		Path:        PathFor(best.Candidate, req.Mode),
		GasEstimate: best.GasEstimate,
	}
	if req.Mode == domain.ModeExactOut {
		priced.AmountIn = best.Amount
		priced.AmountOut = req.Amount
	} else {
		priced.AmountIn = req.Amount
		priced.AmountOut = best.Amount
	}

	priced.PriceImpactPct = PriceImpact(ctx, r.feed,
		req.TokenIn, req.TokenOut,
		priced.AmountIn, priced.AmountOut,
		r.registry.Decimals(req.TokenIn), r.registry.Decimals(req.TokenOut))

	return priced
}
