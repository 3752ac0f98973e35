package router

import (
	"math/big"
	"testing"
	"time"

	"github.com/thehyperflames/swap-gateway/internal/domain"
)

func TestFingerprint(t *testing.T) {
	amount := big.NewInt(1_000_000_000_000_000_000)
	fp := Fingerprint(1,
		"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		0, amount, domain.ModeExactIn)

	want := "1|0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2|0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48|0|1000000000000000000|EXACT_IN"
	if fp != want {
		t.Errorf("fingerprint = %q, want %q", fp, want)
	}
}

func TestFingerprintDistinguishesRequests(t *testing.T) {
	a := "0x1000000000000000000000000000000000000001"
	b := "0x1000000000000000000000000000000000000002"
	amount := big.NewInt(100)

	base := Fingerprint(1, a, b, 0, amount, domain.ModeExactIn)

	variants := []string{
		Fingerprint(2, a, b, 0, amount, domain.ModeExactIn),             // chain
		Fingerprint(1, b, a, 0, amount, domain.ModeExactIn),             // direction
		Fingerprint(1, a, b, 500, amount, domain.ModeExactIn),           // fee
		Fingerprint(1, a, b, 0, big.NewInt(101), domain.ModeExactIn),    // amount
		Fingerprint(1, a, b, 0, amount, domain.ModeExactOut),            // mode
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base fingerprint", i)
		}
	}
}

func TestQuoteCacheRoundTrip(t *testing.T) {
	qc := NewQuoteCache(time.Second)
	defer qc.Stop()

	route := &PricedRoute{AmountIn: big.NewInt(1), AmountOut: big.NewInt(3000)}
	qc.Set("fp-1", route)

	got := qc.Get("fp-1")
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.AmountOut.Cmp(route.AmountOut) != 0 {
		t.Errorf("cached amountOut = %s, want %s", got.AmountOut, route.AmountOut)
	}

	if qc.Get("fp-2") != nil {
		t.Error("unexpected hit for unknown fingerprint")
	}
}

func TestQuoteCacheTTL(t *testing.T) {
	qc := NewQuoteCache(20 * time.Millisecond)
	defer qc.Stop()

	qc.Set("fp-ttl", &PricedRoute{AmountOut: big.NewInt(1)})
	if qc.Get("fp-ttl") == nil {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(30 * time.Millisecond)
	if qc.Get("fp-ttl") != nil {
		t.Error("expected miss after TTL")
	}
}

func TestQuoteCacheHitBookkeeping(t *testing.T) {
	qc := NewQuoteCache(time.Minute)
	defer qc.Stop()

	qc.Set("fp-hits", &PricedRoute{AmountOut: big.NewInt(1)})

	hits, lastHit, ok := qc.Stats("fp-hits")
	if !ok || hits != 0 || !lastHit.IsZero() {
		t.Fatalf("fresh entry stats = %d hits, lastHit %v, ok %v", hits, lastHit, ok)
	}

	before := time.Now()
	qc.Get("fp-hits")
	qc.Get("fp-hits")

	hits, lastHit, ok = qc.Stats("fp-hits")
	if !ok || hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
	if lastHit.Before(before) {
		t.Errorf("lastHit = %v, want at or after %v", lastHit, before)
	}

	// A miss on another key bumps nothing.
	qc.Get("fp-other")
	if hits, _, _ := qc.Stats("fp-hits"); hits != 2 {
		t.Errorf("hits after unrelated miss = %d, want 2", hits)
	}

	// A replaced payload starts its bookkeeping over.
	qc.Set("fp-hits", &PricedRoute{AmountOut: big.NewInt(2)})
	if hits, _, _ := qc.Stats("fp-hits"); hits != 0 {
		t.Errorf("hits after overwrite = %d, want 0", hits)
	}

	if _, _, ok := qc.Stats("fp-unknown"); ok {
		t.Error("unknown fingerprint should report no stats")
	}
}

func TestQuoteCacheExpiryBoundary(t *testing.T) {
	qc := NewQuoteCache(time.Second)
	defer qc.Stop()

	qc.Set("fp-edge", &PricedRoute{AmountOut: big.NewInt(1)})

	shard := qc.getShard(hashKey("fp-edge"))
	shard.mu.RLock()
	var expiry int64
	for i := 0; i < shard.size; i++ {
		if shard.entries[i].fp == "fp-edge" {
			expiry = shard.entries[i].expiry
		}
	}
	shard.mu.RUnlock()
	if expiry == 0 {
		t.Fatal("entry not stored")
	}

	if qc.getAt("fp-edge", expiry-1) == nil {
		t.Error("expected hit just before expiry")
	}
	if qc.getAt("fp-edge", expiry) != nil {
		t.Error("lookup at the expiry instant must treat the entry as absent")
	}
}

func TestQuoteCacheOverwrite(t *testing.T) {
	qc := NewQuoteCache(time.Second)
	defer qc.Stop()

	qc.Set("fp", &PricedRoute{AmountOut: big.NewInt(1)})
	qc.Set("fp", &PricedRoute{AmountOut: big.NewInt(2)})

	got := qc.Get("fp")
	if got == nil || got.AmountOut.Int64() != 2 {
		t.Errorf("expected overwritten entry, got %+v", got)
	}
	if qc.Size() != 1 {
		t.Errorf("size = %d, want 1", qc.Size())
	}
}

func TestQuoteCacheConcurrent(t *testing.T) {
	qc := NewQuoteCache(time.Second)
	defer qc.Stop()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				fp := Fingerprint(uint64(g), "a", "b", 0, big.NewInt(int64(i)), domain.ModeExactIn)
				qc.Set(fp, &PricedRoute{AmountOut: big.NewInt(int64(i))})
				qc.Get(fp)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

func BenchmarkQuoteCacheGet(b *testing.B) {
	qc := NewQuoteCache(time.Minute)
	defer qc.Stop()

	fp := Fingerprint(1, "0xaaaa", "0xbbbb", 0, big.NewInt(1000), domain.ModeExactIn)
	qc.Set(fp, &PricedRoute{AmountOut: big.NewInt(1)})

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		qc.Get(fp)
	}
}
