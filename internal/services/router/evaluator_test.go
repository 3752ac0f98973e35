package router

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
)

// stubOracle prices paths from a fixed table keyed by hex path, or fails.
type stubOracle struct {
	mu      sync.Mutex
	calls   int32
	quote   func(path []byte, amount *big.Int) (*big.Int, error)
	latency time.Duration
}

func (s *stubOracle) do(ctx context.Context, path []byte, amount *big.Int) (*big.Int, *big.Int, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	out, err := s.quote(path, amount)
	if err != nil {
		return nil, nil, err
	}
	return out, big.NewInt(150000), nil
}

func (s *stubOracle) QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (*big.Int, *big.Int, error) {
	return s.do(ctx, path, amountIn)
}

func (s *stubOracle) QuoteExactOutput(ctx context.Context, path []byte, amountOut *big.Int) (*big.Int, *big.Int, error) {
	return s.do(ctx, path, amountOut)
}

func testCandidates(n int) []domain.Candidate {
	tokenA := ethcommon.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB := ethcommon.HexToAddress("0x1000000000000000000000000000000000000002")
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{Hops: []domain.Hop{
			{TokenIn: tokenA, TokenOut: tokenB, Fee: uint32(500 + i)},
		}}
	}
	return out
}

func TestEvaluateAllSucceed(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return big.NewInt(int64(1000 + len(path))), nil
	}}
	ev := NewEvaluator(oracle, 4)

	candidates := testCandidates(5)
	results := ev.Evaluate(context.Background(), candidates, big.NewInt(1), domain.ModeExactIn)

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d failed: %v", i, r.Err)
		}
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Amount == nil || r.GasEstimate == nil {
			t.Errorf("result %d missing amounts", i)
		}
	}
}

func TestEvaluatePartialFailure(t *testing.T) {
	// 2 of 7 candidates fail; the rest must still be priced and the batch
	// must not error.
	var n int32
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		i := atomic.AddInt32(&n, 1)
		if i%3 == 0 {
			return nil, errors.New("pool does not exist")
		}
		return big.NewInt(int64(100 * i)), nil
	}}
	ev := NewEvaluator(oracle, 0)

	results := ev.Evaluate(context.Background(), testCandidates(7), big.NewInt(1), domain.ModeExactIn)

	ok, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			var oe *common.OracleError
			if !errors.As(r.Err, &oe) {
				t.Errorf("failure not wrapped as OracleError: %v", r.Err)
			}
			continue
		}
		ok++
	}
	if failed != 2 || ok != 5 {
		t.Fatalf("ok=%d failed=%d, want 5/2", ok, failed)
	}

	if _, err := SelectBest(results, domain.ModeExactIn); err != nil {
		t.Errorf("SelectBest over partial results: %v", err)
	}
}

func TestEvaluateAllFail(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return nil, errors.New("rpc down")
	}}
	ev := NewEvaluator(oracle, 2)

	results := ev.Evaluate(context.Background(), testCandidates(4), big.NewInt(1), domain.ModeExactIn)

	for i, r := range results {
		if r.Err == nil {
			t.Errorf("result %d should have failed", i)
		}
	}
	if _, err := SelectBest(results, domain.ModeExactIn); !errors.Is(err, common.ErrNoRouteFound) {
		t.Errorf("error = %v, want ErrNoRouteFound", err)
	}
}

func TestEvaluateCancellation(t *testing.T) {
	oracle := &stubOracle{
		latency: 50 * time.Millisecond,
		quote: func(path []byte, amount *big.Int) (*big.Int, error) {
			return big.NewInt(1), nil
		},
	}
	ev := NewEvaluator(oracle, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	results := ev.Evaluate(ctx, testCandidates(10), big.NewInt(1), domain.ModeExactIn)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		t.Error("expected cancellation to fail at least one candidate")
	}
	if int(atomic.LoadInt32(&oracle.calls)) == 10 {
		t.Error("cancellation should stop issuing new oracle calls")
	}
}

func TestEvaluateRespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return big.NewInt(1), nil
	}}
	ev := NewEvaluator(oracle, 3)

	ev.Evaluate(context.Background(), testCandidates(12), big.NewInt(1), domain.ModeExactIn)

	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestEvaluateExactOutUsesReversedPath(t *testing.T) {
	var gotPath []byte
	var mu sync.Mutex
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		mu.Lock()
		gotPath = append([]byte(nil), path...)
		mu.Unlock()
		return big.NewInt(1), nil
	}}
	ev := NewEvaluator(oracle, 1)

	c := domain.Candidate{Hops: []domain.Hop{
		{TokenIn: common.WETH, TokenOut: common.USDC, Fee: 500},
	}}
	ev.Evaluate(context.Background(), []domain.Candidate{c}, big.NewInt(1), domain.ModeExactOut)

	want := EncodePathReversed(c.Hops)
	mu.Lock()
	defer mu.Unlock()
	if string(gotPath) != string(want) {
		t.Errorf("exact-out path = %x, want reversed %x", gotPath, want)
	}
}
