package router

import (
	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
)

// SelectBest picks the winning candidate from oracle results. Exact-in keeps
// the highest output; exact-out keeps the lowest input. Ties go to the lowest
// generation index, so selection is deterministic regardless of the order
// results arrive in. Failed results are skipped; if none survive, returns
// ErrNoRouteFound.
func SelectBest(results []domain.EvalResult, mode domain.SwapMode) (domain.EvalResult, error) {
	best := domain.EvalResult{Index: -1}
	for _, r := range results {
		if r.Err != nil || r.Amount == nil {
			continue
		}
		if best.Index < 0 {
			best = r
			continue
		}
		cmp := r.Amount.Cmp(best.Amount)
		better := false
		switch mode {
		case domain.ModeExactOut:
			better = cmp < 0
		default:
			better = cmp > 0
		}
		if better || (cmp == 0 && r.Index < best.Index) {
			best = r
		}
	}
	if best.Index < 0 {
		return domain.EvalResult{}, common.ErrNoRouteFound
	}
	return best, nil
}
