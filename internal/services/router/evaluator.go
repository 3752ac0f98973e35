package router

import (
	"context"
	"math/big"
	"sync"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// Oracle prices a packed path. Implementations are safe for concurrent use.
type Oracle interface {
	// QuoteExactInput returns the output amount and a gas estimate for
	// swapping amountIn along a forward-encoded path.
	QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (amountOut, gasEstimate *big.Int, err error)
	// QuoteExactOutput returns the required input amount and a gas estimate
	// for receiving amountOut along a reverse-encoded path.
	QuoteExactOutput(ctx context.Context, path []byte, amountOut *big.Int) (amountIn, gasEstimate *big.Int, err error)
}

// Evaluator fans candidates out to the oracle with bounded concurrency.
// Individual candidate failures are recorded, not propagated; only a fully
// failed batch surfaces to the caller (via SelectBest).
type Evaluator struct {
	oracle         Oracle
	maxConcurrency int
}

func NewEvaluator(oracle Oracle, maxConcurrency int) *Evaluator {
	return &Evaluator{oracle: oracle, maxConcurrency: maxConcurrency}
}

// Evaluate prices every candidate and returns one result per candidate,
// indexed by generation order. Cancellation of ctx stops issuing new oracle
// calls; in-flight calls get the cancelled context.
func (e *Evaluator) Evaluate(ctx context.Context, candidates []domain.Candidate, amount *big.Int, mode domain.SwapMode) []domain.EvalResult {
	results := make([]domain.EvalResult, len(candidates))

	var sem chan struct{}
	if e.maxConcurrency > 0 {
		sem = make(chan struct{}, e.maxConcurrency)
	}

	var wg sync.WaitGroup
	for i, c := range candidates {
		results[i] = domain.EvalResult{Candidate: c, Index: i}

		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}
		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				continue
			}
		}

		wg.Add(1)
		go func(i int, c domain.Candidate) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}

			var amt, gas *big.Int
			var err error
			if mode == domain.ModeExactOut {
				amt, gas, err = e.oracle.QuoteExactOutput(ctx, EncodePathReversed(c.Hops), amount)
			} else {
				amt, gas, err = e.oracle.QuoteExactInput(ctx, EncodePath(c.Hops), amount)
			}
			if err != nil {
				results[i].Err = &common.OracleError{Candidate: candidateLabel(c), Err: err}
				metrics.OracleCalls.WithLabelValues(string(mode), "error").Inc()
				return
			}
			results[i].Amount = amt
			results[i].GasEstimate = gas
			metrics.OracleCalls.WithLabelValues(string(mode), "ok").Inc()
		}(i, c)
	}
	wg.Wait()

	return results
}

func candidateLabel(c domain.Candidate) string {
	label := c.Hops[0].TokenIn.Hex()
	for _, h := range c.Hops {
		label += "->" + h.TokenOut.Hex()
	}
	return label
}
