// Package engine wires the quoting pipeline together and owns the quote
// lifecycle: validate, price, bound, persist, expire.
package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/thehyperflames/swap-gateway/internal/adapters/blockchain"
	"github.com/thehyperflames/swap-gateway/internal/adapters/oracle"
	"github.com/thehyperflames/swap-gateway/internal/adapters/persistence"
	"github.com/thehyperflames/swap-gateway/internal/adapters/pricefeed"
	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/config"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
	"github.com/thehyperflames/swap-gateway/internal/services/builder"
	"github.com/thehyperflames/swap-gateway/internal/services/router"
	"github.com/thehyperflames/swap-gateway/internal/services/tokens"
	"github.com/thehyperflames/swap-gateway/internal/units"
)

const ENGINE_SERVICE = "engine-service"

const gasPriceRefresh = 15 * time.Second

// maxQuoteTTLSec caps caller-requested quote lifetimes. A long-lived quote
// is a free option against the pool.
const maxQuoteTTLSec = 300

// QuoteParams is a raw API-level quote request.
type QuoteParams struct {
	TokenIn  string
	TokenOut string
	Amount   string // human decimal amount
	Mode     domain.SwapMode

	SlippagePct float64
	FeeTier     uint32 // 0 = all tiers
	TTLSec      int    // 0 = configured default

	// Audit fields.
	IP          string
	UserAddress string
}

type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger
	mu     sync.RWMutex

	ethClient *ethclient.Client

	registry *tokens.Registry
	router   *router.Router
	cache    *router.QuoteCache
	store    *persistence.Store
	builder  *builder.Service
	gasCache *blockchain.GasPriceCache

	chainCfg  *config.ChainConfig
	engineCfg *config.EngineConfig

	stopChan chan struct{}
	stopOnce sync.Once
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.chainCfg = c.GetConfig(config.CHAIN_CONFIG_KEY).(*config.ChainConfig)
	svc.engineCfg = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	svc.stopChan = make(chan struct{})

	client, err := ethclient.Dial(svc.chainCfg.RPCUrl)
	if err != nil {
		return err
	}
	svc.ethClient = client

	quoter, err := oracle.NewQuoter(client, svc.chainCfg.QuoterAddress)
	if err != nil {
		return err
	}

	svc.registry = tokens.NewDefaultRegistry()

	var feed router.PriceFeed
	feedTimeout := time.Duration(svc.engineCfg.PriceFeedTimeout) * time.Second
	if svc.engineCfg.PriceFeedURL != "" {
		feed = pricefeed.NewManager(30*time.Second,
			pricefeed.NewHTTPSource("primary", svc.engineCfg.PriceFeedURL, feedTimeout),
			stableAnchorSource(),
		)
	} else {
		feed = pricefeed.NewManager(30*time.Second, stableAnchorSource())
	}

	svc.cache = router.NewQuoteCache(time.Duration(svc.engineCfg.CacheTTL) * time.Second)
	svc.router = router.NewRouter(
		router.NewEvaluator(quoter, svc.engineCfg.MaxConcurrency),
		svc.cache,
		feed,
		svc.registry,
		uint64(svc.chainCfg.ChainID),
		svc.chainCfg.Anchors,
		time.Duration(svc.engineCfg.EvalTimeout)*time.Second,
	)

	store, err := persistence.NewStore(svc.engineCfg.DBPath, svc.engineCfg.PersistenceEnabled)
	if err != nil {
		return err
	}
	svc.store = store

	svc.gasCache = blockchain.NewGasPriceCache(client, gasPriceRefresh)

	svc.builder, err = builder.NewService(svc.chainCfg.RouterAddress, store, svc.gasCache)
	return err
}

func (svc *Service) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	svc.gasCache.Start(ctx)
	cancel()

	go svc.sweepLoop()

	log.Info().
		Int64("chain_id", svc.chainCfg.ChainID).
		Int("anchors", len(svc.chainCfg.Anchors)).
		Int("quote_ttl_s", svc.engineCfg.QuoteTTL).
		Msg("[engine] Started")
	return nil
}

func (svc *Service) Stop() error {
	svc.stopOnce.Do(func() { close(svc.stopChan) })
	svc.cache.Stop()
	svc.gasCache.Stop()
	if err := svc.store.Close(); err != nil {
		log.Error().Err(err).Msg("[engine] failed to close quote store")
	}
	svc.ethClient.Close()
	return nil
}

// stableAnchorSource prices the stablecoin anchors at par. Dollar-pegged
// anchors are the common denominator even when the external feed is down.
func stableAnchorSource() pricefeed.Source {
	return pricefeed.NewStaticSource(map[string]float64{
		common.USDC.Hex(): 1,
		common.USDT.Hex(): 1,
		common.DAI.Hex():  1,
	})
}

// Quote prices a request and mints a redeemable quote. The bool reports
// whether pricing came from cache.
func (svc *Service) Quote(ctx context.Context, params QuoteParams) (*domain.Quote, bool, error) {
	start := time.Now()

	q, cacheHit, err := svc.quote(ctx, params)

	latency := time.Since(start)
	status := "ok"
	message := ""
	if err != nil {
		status = "error"
		message = err.Error()
	}
	metrics.QuoteRequests.WithLabelValues(string(params.Mode), status).Inc()
	metrics.QuoteDuration.WithLabelValues(string(params.Mode)).Observe(latency.Seconds())

	rl := &domain.RequestLog{
		ID:           uuid.NewString(),
		ChainID:      uint64(svc.chainCfg.ChainID),
		TokenIn:      params.TokenIn,
		TokenOut:     params.TokenOut,
		Amount:       params.Amount,
		Mode:         params.Mode,
		FeeTier:      params.FeeTier,
		SlippagePct:  strconv.FormatFloat(params.SlippagePct, 'f', -1, 64),
		IP:           params.IP,
		UserAddress:  params.UserAddress,
		RateLimitKey: rateLimitKey(params.UserAddress, params.IP),
		Success:      err == nil,
		Message:      message,
		LatencyMs:    latency.Milliseconds(),
		CacheHit:     cacheHit,
		CreatedAt:    start,
	}
	svc.store.LogRequest(rl)

	return q, cacheHit, err
}

func (svc *Service) quote(ctx context.Context, params QuoteParams) (*domain.Quote, bool, error) {
	// All validation happens before the first oracle call.
	tokenIn, err := svc.registry.Validate(params.TokenIn)
	if err != nil {
		return nil, false, err
	}
	tokenOut, err := svc.registry.Validate(params.TokenOut)
	if err != nil {
		return nil, false, err
	}
	if tokenIn == tokenOut {
		return nil, false, common.ErrInvalidInput
	}

	var amountDecimals uint8
	if params.Mode == domain.ModeExactOut {
		amountDecimals = svc.registry.Decimals(tokenOut)
	} else {
		amountDecimals = svc.registry.Decimals(tokenIn)
	}
	amount, err := units.Parse(params.Amount, amountDecimals)
	if err != nil {
		return nil, false, common.ErrInvalidInput
	}

	bps, err := router.SlippageBps(params.SlippagePct)
	if err != nil {
		return nil, false, err
	}

	ttl, err := svc.quoteTTL(params.TTLSec)
	if err != nil {
		return nil, false, err
	}

	priced, cacheHit, err := svc.router.Price(ctx, router.PriceRequest{
		TokenIn:  tokenIn,
		TokenOut: tokenOut,
		Amount:   amount,
		Mode:     params.Mode,
		Fee:      params.FeeTier,
	})
	if err != nil {
		return nil, cacheHit, err
	}

	now := time.Now()
	q := &domain.Quote{
		ID:             uuid.NewString(),
		ChainID:        uint64(svc.chainCfg.ChainID),
		TokenIn:        tokenIn,
		TokenOut:       tokenOut,
		AmountIn:       priced.AmountIn,
		AmountOut:      priced.AmountOut,
		Mode:           params.Mode,
		Route:          priced.Route,
		Path:           priced.Path,
		PriceImpactPct: priced.PriceImpactPct,
		GasEstimate:    priced.GasEstimate,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		Status:         domain.QuoteStatusActive,
	}
	if params.Mode == domain.ModeExactOut {
		q.AmountInMaximum = router.MaxAmountIn(priced.AmountIn, bps)
	} else {
		q.AmountOutMinimum = router.MinAmountOut(priced.AmountOut, bps)
	}

	svc.store.CreateQuote(q)
	svc.logger.Info("issued quote "+q.ID, "Quote")
	return q, cacheHit, nil
}

// quoteTTL resolves the requested quote lifetime. Zero means the configured
// default; anything above the cap is clamped.
func (svc *Service) quoteTTL(ttlSec int) (time.Duration, error) {
	if ttlSec < 0 {
		return 0, common.ErrInvalidInput
	}
	if ttlSec == 0 {
		ttlSec = svc.engineCfg.QuoteTTL
	}
	if ttlSec > maxQuoteTTLSec {
		ttlSec = maxQuoteTTLSec
	}
	return time.Duration(ttlSec) * time.Second, nil
}

// rateLimitKey mirrors the HTTP rate limiter's bucketing: callers holding a
// wallet address are keyed by address, anonymous callers by IP.
func rateLimitKey(userAddress, ip string) string {
	if userAddress != "" {
		return userAddress
	}
	return ip
}

// GetQuote looks up a previously issued quote, expiring it lazily.
func (svc *Service) GetQuote(id string) (*domain.Quote, error) {
	return svc.store.GetQuote(id, time.Now())
}

// BuildSwap consumes a quote into an unsigned swap transaction.
func (svc *Service) BuildSwap(req domain.SwapBuildRequest) (*domain.SwapBuildResponse, error) {
	return svc.builder.Build(req)
}

// Tokens returns the allow-listed tokens.
func (svc *Service) Tokens() []tokens.Token {
	return svc.registry.List()
}

// AllowToken adds a token to the allow-list at runtime.
func (svc *Service) AllowToken(address ethcommon.Address, symbol, name string, decimals uint8) {
	svc.registry.Add(tokens.Token{Address: address, Symbol: symbol, Name: name, Decimals: decimals})
}

func (svc *Service) sweepLoop() {
	interval := time.Duration(svc.engineCfg.SweepInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stopChan:
			return
		case <-ticker.C:
			if purged := svc.store.CleanupExpired(time.Now()); purged > 0 {
				log.Info().Int("purged", purged).Msg("[engine] expired quote sweep")
			}
		}
	}
}
