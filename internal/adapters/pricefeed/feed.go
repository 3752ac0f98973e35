// Package pricefeed resolves USD token prices for price impact estimation.
// Prices are advisory: every lookup failure degrades to "unknown" and the
// quote flow continues.
package pricefeed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// Source is one USD price provider, tried in registration order.
type Source interface {
	Name() string
	PriceUSD(ctx context.Context, token string) (float64, error)
}

type cachedPrice struct {
	price   float64
	fetched time.Time
}

// Manager fans a lookup across sources with a short-lived cache. First
// source to answer wins.
type Manager struct {
	sources  []Source
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedPrice
}

func NewManager(cacheTTL time.Duration, sources ...Source) *Manager {
	return &Manager{
		sources:  sources,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cachedPrice),
	}
}

// PriceUSD returns a token's USD price. The second return is false when no
// source can answer; callers treat that as unknown, not zero.
func (m *Manager) PriceUSD(ctx context.Context, token string) (float64, bool) {
	token = strings.ToLower(token)

	m.mu.RLock()
	if c, ok := m.cache[token]; ok && time.Since(c.fetched) < m.cacheTTL {
		m.mu.RUnlock()
		return c.price, true
	}
	m.mu.RUnlock()

	for _, src := range m.sources {
		price, err := src.PriceUSD(ctx, token)
		if err != nil {
			metrics.PriceFeedRequests.WithLabelValues(src.Name(), "error").Inc()
			log.Debug().
				Str("source", src.Name()).
				Str("token", token).
				Err(err).
				Msg("[pricefeed] Source lookup failed")
			continue
		}
		if price <= 0 {
			metrics.PriceFeedRequests.WithLabelValues(src.Name(), "empty").Inc()
			continue
		}
		metrics.PriceFeedRequests.WithLabelValues(src.Name(), "ok").Inc()

		m.mu.Lock()
		m.cache[token] = cachedPrice{price: price, fetched: time.Now()}
		m.mu.Unlock()
		return price, true
	}
	return 0, false
}
