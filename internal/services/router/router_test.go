package router

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/services/tokens"
)

func newTestRouter(t *testing.T, oracle Oracle) *Router {
	t.Helper()
	cache := NewQuoteCache(time.Second)
	t.Cleanup(cache.Stop)
	return NewRouter(
		NewEvaluator(oracle, 4),
		cache,
		nil, // no price feed: impact reports "0"
		tokens.NewDefaultRegistry(),
		1,
		common.DefaultAnchors,
		time.Second,
	)
}

func TestPriceValidationFailsFast(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return big.NewInt(1), nil
	}}
	r := newTestRouter(t, oracle)

	weth := strings.ToLower(common.WETH.Hex())
	usdc := strings.ToLower(common.USDC.Hex())

	tests := []struct {
		name string
		req  PriceRequest
	}{
		{"nil amount", PriceRequest{TokenIn: weth, TokenOut: usdc, Mode: domain.ModeExactIn}},
		{"zero amount", PriceRequest{TokenIn: weth, TokenOut: usdc, Amount: big.NewInt(0), Mode: domain.ModeExactIn}},
		{"negative amount", PriceRequest{TokenIn: weth, TokenOut: usdc, Amount: big.NewInt(-1), Mode: domain.ModeExactIn}},
		{"same token", PriceRequest{TokenIn: weth, TokenOut: weth, Amount: big.NewInt(1), Mode: domain.ModeExactIn}},
		{"bad fee tier", PriceRequest{TokenIn: weth, TokenOut: usdc, Amount: big.NewInt(1), Mode: domain.ModeExactIn, Fee: 1234}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := r.Price(context.Background(), tt.req)
			if !errors.Is(err, common.ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
	if atomic.LoadInt32(&oracle.calls) != 0 {
		t.Errorf("validation failures must not reach the oracle, got %d calls", oracle.calls)
	}
}

func TestPriceExactIn(t *testing.T) {
	// Single-hop 3000 tier wins with the largest output.
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		if len(path) == 43 && path[20] == 0x00 && path[21] == 0x0b && path[22] == 0xb8 {
			return big.NewInt(3_000_000_000), nil
		}
		return big.NewInt(2_900_000_000), nil
	}}
	r := newTestRouter(t, oracle)

	weth := strings.ToLower(common.WETH.Hex())
	usdc := strings.ToLower(common.USDC.Hex())

	priced, cacheHit, err := r.Price(context.Background(), PriceRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		Amount:   big.NewInt(1e18),
		Mode:     domain.ModeExactIn,
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if cacheHit {
		t.Error("first call should not be a cache hit")
	}
	if priced.AmountOut.Int64() != 3_000_000_000 {
		t.Errorf("amountOut = %s, want 3000000000", priced.AmountOut)
	}
	if priced.AmountIn.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("amountIn = %s, want 1e18", priced.AmountIn)
	}
	if len(priced.Route) != 1 || priced.Route[0].Fee != 3000 {
		t.Errorf("route = %+v, want single hop at fee 3000", priced.Route)
	}
	if priced.PriceImpactPct != "0" {
		t.Errorf("impact without feed = %q, want \"0\"", priced.PriceImpactPct)
	}
}

func TestPriceExactOutPicksLowestInput(t *testing.T) {
	var n int32
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		// Distinct inputs per candidate; one clear minimum.
		i := atomic.AddInt32(&n, 1)
		if i == 2 {
			return big.NewInt(900_000), nil
		}
		return big.NewInt(int64(1_000_000 + i)), nil
	}}
	r := newTestRouter(t, oracle)

	weth := strings.ToLower(common.WETH.Hex())
	usdc := strings.ToLower(common.USDC.Hex())

	priced, _, err := r.Price(context.Background(), PriceRequest{
		TokenIn:  weth,
		TokenOut: usdc,
		Amount:   big.NewInt(3_000_000_000),
		Mode:     domain.ModeExactOut,
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if priced.AmountIn.Int64() != 900_000 {
		t.Errorf("amountIn = %s, want the minimum 900000", priced.AmountIn)
	}
	if priced.AmountOut.Int64() != 3_000_000_000 {
		t.Errorf("amountOut = %s, want the requested 3000000000", priced.AmountOut)
	}
}

func TestPriceCacheHit(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return big.NewInt(100), nil
	}}
	r := newTestRouter(t, oracle)

	req := PriceRequest{
		TokenIn:  strings.ToLower(common.WETH.Hex()),
		TokenOut: strings.ToLower(common.USDC.Hex()),
		Amount:   big.NewInt(1e18),
		Mode:     domain.ModeExactIn,
	}

	if _, hit, err := r.Price(context.Background(), req); err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	callsAfterFirst := atomic.LoadInt32(&oracle.calls)

	priced, hit, err := r.Price(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !hit {
		t.Error("second identical call should hit the cache")
	}
	if priced == nil || priced.AmountOut.Int64() != 100 {
		t.Errorf("cached result = %+v", priced)
	}
	if atomic.LoadInt32(&oracle.calls) != callsAfterFirst {
		t.Error("cache hit must not call the oracle")
	}
}

func TestPriceFeeFilterLimitsCandidates(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return big.NewInt(100), nil
	}}
	r := newTestRouter(t, oracle)

	_, _, err := r.Price(context.Background(), PriceRequest{
		TokenIn:  strings.ToLower(common.WETH.Hex()),
		TokenOut: strings.ToLower(common.USDC.Hex()),
		Amount:   big.NewInt(1e18),
		Mode:     domain.ModeExactIn,
		Fee:      500,
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got := atomic.LoadInt32(&oracle.calls); got != 1 {
		t.Errorf("fee-filtered request made %d oracle calls, want 1", got)
	}
}

func TestPriceNoRoute(t *testing.T) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return nil, errors.New("pool does not exist")
	}}
	r := newTestRouter(t, oracle)

	_, _, err := r.Price(context.Background(), PriceRequest{
		TokenIn:  strings.ToLower(common.WETH.Hex()),
		TokenOut: strings.ToLower(common.USDC.Hex()),
		Amount:   big.NewInt(1e18),
		Mode:     domain.ModeExactIn,
	})
	if !errors.Is(err, common.ErrNoRouteFound) {
		t.Errorf("error = %v, want ErrNoRouteFound", err)
	}
}

func BenchmarkPrice(b *testing.B) {
	oracle := &stubOracle{quote: func(path []byte, amount *big.Int) (*big.Int, error) {
		return big.NewInt(3_000_000_000), nil
	}}
	cache := NewQuoteCache(time.Millisecond) // effectively disable caching
	defer cache.Stop()
	r := NewRouter(NewEvaluator(oracle, 8), cache, nil, tokens.NewDefaultRegistry(), 1, common.DefaultAnchors, time.Second)

	req := PriceRequest{
		TokenIn:  strings.ToLower(common.WETH.Hex()),
		TokenOut: strings.ToLower(common.USDC.Hex()),
		Amount:   big.NewInt(1e18),
		Mode:     domain.ModeExactIn,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := r.Price(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
