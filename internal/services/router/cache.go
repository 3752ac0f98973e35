package router

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

const (
	quoteCacheMaxSize = 1024 // Power of 2 for efficient modulo
	quoteCacheShards  = 16   // Number of shards for reduced lock contention
)

// FNV-1a constants for zero-allocation hashing
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// PricedRoute is a cached pricing outcome. Slippage bounds and the quote ID
// are derived per request and never cached.
type PricedRoute struct {
	AmountIn  *big.Int
	AmountOut *big.Int

	Route []domain.Hop
	Path  []byte

	GasEstimate    *big.Int
	PriceImpactPct string
}

// Fingerprint is the canonical cache key for a pricing request. Token
// addresses must already be lowercase.
func Fingerprint(chainID uint64, tokenIn, tokenOut string, fee uint32, amount *big.Int, mode domain.SwapMode) string {
	return fmt.Sprintf("%d|%s|%s|%d|%s|%s", chainID, tokenIn, tokenOut, fee, amount, mode)
}

// cacheEntry represents a cached route in contiguous memory
type cacheEntry struct {
	key     uint64
	fp      string // full fingerprint, guards against hash collisions
	route   *PricedRoute
	expiry  int64  // Unix nano for faster comparison
	hits    uint64 // Lookup hits since the entry was stored
	lastHit int64  // Unix nano of the most recent hit
	used    uint32 // Clock bit for eviction
}

// cacheShard is a single shard of the cache
type cacheShard struct {
	mu      sync.RWMutex
	entries []cacheEntry
	size    int
	hand    int // Clock hand for eviction
}

// QuoteCache is a sharded clock-based cache with TTL, keyed by request
// fingerprint.
type QuoteCache struct {
	shards   [quoteCacheShards]cacheShard
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	qc := &QuoteCache{
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	entriesPerShard := quoteCacheMaxSize / quoteCacheShards
	for i := 0; i < quoteCacheShards; i++ {
		qc.shards[i].entries = make([]cacheEntry, entriesPerShard)
	}
	go qc.cleanupLoop()
	return qc
}

// Stop stops the cleanup goroutine
func (qc *QuoteCache) Stop() {
	qc.stopOnce.Do(func() { close(qc.stopChan) })
}

// hashKey computes inline FNV-1a over the fingerprint (zero allocation)
func hashKey(fp string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(fp); i++ {
		h ^= uint64(fp[i])
		h *= fnvPrime64
	}
	return h
}

func (qc *QuoteCache) getShard(key uint64) *cacheShard {
	return &qc.shards[key%quoteCacheShards]
}

func (qc *QuoteCache) Get(fp string) *PricedRoute {
	return qc.getAt(fp, time.Now().UnixNano())
}

// getAt treats an entry at its exact expiry instant as absent, so a lookup
// racing the sweep can never return a logically-expired route.
func (qc *QuoteCache) getAt(fp string, now int64) *PricedRoute {
	key := hashKey(fp)

	shard := qc.getShard(key)
	shard.mu.RLock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && entry.fp == fp && now < entry.expiry {
			atomic.StoreUint32(&entry.used, 1)
			atomic.AddUint64(&entry.hits, 1)
			atomic.StoreInt64(&entry.lastHit, now)
			route := entry.route
			shard.mu.RUnlock()
			metrics.QuoteCacheHits.Inc()
			return route
		}
	}

	shard.mu.RUnlock()
	metrics.QuoteCacheMisses.Inc()
	return nil
}

// Stats reports an entry's hit count and last hit time. ok is false for
// unknown fingerprints.
func (qc *QuoteCache) Stats(fp string) (hits uint64, lastHit time.Time, ok bool) {
	key := hashKey(fp)

	shard := qc.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && entry.fp == fp {
			hits = atomic.LoadUint64(&entry.hits)
			if ns := atomic.LoadInt64(&entry.lastHit); ns != 0 {
				lastHit = time.Unix(0, ns)
			}
			return hits, lastHit, true
		}
	}
	return 0, time.Time{}, false
}

func (qc *QuoteCache) Set(fp string, route *PricedRoute) {
	key := hashKey(fp)
	expiry := time.Now().Add(qc.ttl).UnixNano()

	shard := qc.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && entry.fp == fp {
			entry.route = route
			entry.expiry = expiry
			entry.hits = 0
			entry.lastHit = 0
			atomic.StoreUint32(&entry.used, 1)
			return
		}
	}

	entriesPerShard := len(shard.entries)

	if shard.size < entriesPerShard {
		shard.entries[shard.size] = cacheEntry{key: key, fp: fp, route: route, expiry: expiry, used: 1}
		shard.size++
		return
	}

	// Clock eviction: find an entry to evict
	for attempts := 0; attempts < entriesPerShard*2; attempts++ {
		entry := &shard.entries[shard.hand]
		pos := shard.hand
		shard.hand = (shard.hand + 1) % entriesPerShard

		now := time.Now().UnixNano()
		if atomic.LoadUint32(&entry.used) == 0 || now >= entry.expiry {
			shard.entries[pos] = cacheEntry{key: key, fp: fp, route: route, expiry: expiry, used: 1}
			return
		}

		// Clear used bit (second chance)
		atomic.StoreUint32(&entry.used, 0)
	}

	// Fallback: overwrite at current hand position
	shard.entries[shard.hand] = cacheEntry{key: key, fp: fp, route: route, expiry: expiry, used: 1}
	shard.hand = (shard.hand + 1) % entriesPerShard
}

// evictExpired marks expired entries as unused so Set reclaims them
func (qc *QuoteCache) evictExpired() {
	now := time.Now().UnixNano()

	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			entry := &shard.entries[j]
			if now >= entry.expiry {
				atomic.StoreUint32(&entry.used, 0)
			}
		}
		shard.mu.Unlock()
	}
}

// Size returns current cache size across all shards
func (qc *QuoteCache) Size() int {
	total := 0
	for i := 0; i < quoteCacheShards; i++ {
		shard := &qc.shards[i]
		shard.mu.RLock()
		total += shard.size
		shard.mu.RUnlock()
	}
	return total
}

func (qc *QuoteCache) cleanupLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-qc.stopChan:
			return
		case <-ticker.C:
			qc.evictExpired()
			metrics.QuoteCacheSize.Set(float64(qc.Size()))
		}
	}
}
