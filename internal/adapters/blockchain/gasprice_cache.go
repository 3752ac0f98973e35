// Package blockchain holds chain-facing helpers shared by the engine and
// the swap builder.
package blockchain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// GasPriceCache keeps a recent gas price so swap builds never block on an
// extra RPC round trip. Refreshed in the background; a stale price is
// acceptable, the caller only attaches it as a hint.
type GasPriceCache struct {
	client  *ethclient.Client
	refresh time.Duration

	mu    sync.RWMutex
	price *big.Int

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewGasPriceCache(client *ethclient.Client, refresh time.Duration) *GasPriceCache {
	return &GasPriceCache{
		client:   client,
		refresh:  refresh,
		stopChan: make(chan struct{}),
	}
}

// Start primes the cache and launches the refresh loop.
func (g *GasPriceCache) Start(ctx context.Context) {
	g.update(ctx)
	go g.loop()
}

func (g *GasPriceCache) Stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
}

// GasPrice returns the cached price, or nil when no refresh has succeeded
// yet.
func (g *GasPriceCache) GasPrice() *big.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.price == nil {
		return nil
	}
	return new(big.Int).Set(g.price)
}

func (g *GasPriceCache) loop() {
	ticker := time.NewTicker(g.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			g.update(ctx)
			cancel()
		}
	}
}

func (g *GasPriceCache) update(ctx context.Context) {
	price, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[gasprice] Refresh failed, keeping previous value")
		return
	}

	g.mu.Lock()
	g.price = price
	g.mu.Unlock()

	metrics.GasPriceRefreshes.Inc()
	f, _ := new(big.Float).SetInt(price).Float64()
	metrics.GasPriceWei.Set(f)
}
