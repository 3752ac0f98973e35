// Package persistence stores quotes and request logs. Reads are served from
// memory; BoltDB is a write-through journal so restarts keep the audit trail.
package persistence

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

const (
	QuotesBucket   = "quotes"
	RequestsBucket = "requests"

	DefaultDBPath = "./data/gateway.db"
)

// expiredRetention keeps terminal quotes (expired, used) resident after
// their TTL so lookups keep distinguishing "expired" from "never existed".
const expiredRetention = time.Hour

type StoredHop struct {
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
	Fee      uint32 `json:"fee"`
}

type StoredQuote struct {
	ID      string `json:"id"`
	ChainID uint64 `json:"chainId"`

	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`

	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`

	Mode  string      `json:"mode"`
	Route []StoredHop `json:"route"`
	Path  string      `json:"path"` // hex without 0x

	AmountOutMinimum string `json:"amountOutMinimum,omitempty"`
	AmountInMaximum  string `json:"amountInMaximum,omitempty"`

	PriceImpactPct string `json:"priceImpactPct"`
	GasEstimate    string `json:"gasEstimate,omitempty"`

	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Status    string `json:"status"`
	SwapID    string `json:"swapId,omitempty"`
}

// Store keeps quotes in memory with best-effort BoltDB write-through. A nil
// database (persistence disabled or open failure) degrades to memory-only.
type Store struct {
	db *boltdb.BoltDatabase

	mu     sync.RWMutex
	quotes map[string]*domain.Quote
}

func NewStore(dbPath string, persist bool) (*Store, error) {
	s := &Store{quotes: make(map[string]*domain.Quote)}
	if !persist {
		log.Info().Msg("[quoteStore] persistence disabled, running in-memory")
		return s, nil
	}

	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}
	s.db = db
	log.Info().Str("path", dbPath).Msg("[quoteStore] opened database")

	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateQuote registers a new quote. The disk write is best-effort; a
// journal failure never fails the quote.
func (s *Store) CreateQuote(q *domain.Quote) {
	s.mu.Lock()
	s.quotes[q.ID] = q
	active := s.activeCountLocked()
	s.mu.Unlock()

	metrics.ActiveQuotes.Set(float64(active))
	s.persistQuote(q)
}

func (s *Store) activeCountLocked() int {
	n := 0
	for _, q := range s.quotes {
		if q.Status == domain.QuoteStatusActive {
			n++
		}
	}
	return n
}

// GetQuote returns a quote by ID, expiring it lazily if its TTL elapsed.
func (s *Store) GetQuote(id string, now time.Time) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, common.ErrQuoteNotFound
	}
	if q.Status == domain.QuoteStatusExpired {
		return nil, common.ErrQuoteExpired
	}
	if q.Status == domain.QuoteStatusActive && q.Expired(now) {
		q.Status = domain.QuoteStatusExpired
		s.persistQuote(q)
		return nil, common.ErrQuoteExpired
	}
	return q, nil
}

// MarkUsed transitions a quote to used, binding it to a swap. Calling it
// again for an already used quote is a no-op.
func (s *Store) MarkUsed(id string, swapID string, now time.Time) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, common.ErrQuoteNotFound
	}
	if q.Status == domain.QuoteStatusUsed {
		return q, nil
	}
	if q.Status == domain.QuoteStatusExpired || (q.Status == domain.QuoteStatusActive && q.Expired(now)) {
		q.Status = domain.QuoteStatusExpired
		s.persistQuote(q)
		return nil, common.ErrQuoteExpired
	}

	q.Status = domain.QuoteStatusUsed
	q.SwapID = swapID
	s.persistQuote(q)
	return q, nil
}

// CleanupExpired bulk-transitions past-TTL quotes to expired and journals
// the new state. Expired and used quotes stay resident until the retention
// window elapses, so lookups answer "expired" rather than "not found".
// Returns how many quotes the sweep expired.
func (s *Store) CleanupExpired(now time.Time) int {
	s.mu.Lock()

	var flipped []*domain.Quote
	dropped := 0
	for id, q := range s.quotes {
		if q.Status == domain.QuoteStatusActive && q.Expired(now) {
			q.Status = domain.QuoteStatusExpired
			flipped = append(flipped, q)
		}
		if q.Status != domain.QuoteStatusActive && now.Sub(q.ExpiresAt) > expiredRetention {
			delete(s.quotes, id)
			dropped++
		}
	}
	active := s.activeCountLocked()
	s.mu.Unlock()

	metrics.ActiveQuotes.Set(float64(active))
	if len(flipped) == 0 && dropped == 0 {
		return 0
	}

	metrics.QuotesExpired.Add(float64(len(flipped)))
	s.persistQuoteBatch(flipped)
	log.Debug().
		Int("expired", len(flipped)).
		Int("dropped", dropped).
		Msg("[quoteStore] expired quote sweep")
	return len(flipped)
}

// LogRequest journals a request record. Best-effort, append-only.
func (s *Store) LogRequest(r *domain.RequestLog) {
	if s.db == nil {
		return
	}
	data, err := sonic.Marshal(r)
	if err != nil {
		log.Error().Err(err).Msg("[quoteStore] failed to marshal request log")
		return
	}
	key := fmt.Sprintf("%d-%s", r.CreatedAt.UnixNano(), r.ID)
	if err := s.db.Set(RequestsBucket, []byte(key), data); err != nil {
		metrics.PersistenceWrites.WithLabelValues(RequestsBucket, "error").Inc()
		log.Error().Err(err).Msg("[quoteStore] failed to persist request log")
		return
	}
	metrics.PersistenceWrites.WithLabelValues(RequestsBucket, "ok").Inc()
}

func (s *Store) persistQuote(q *domain.Quote) {
	if s.db == nil {
		return
	}
	data, err := sonic.Marshal(quoteToStored(q))
	if err != nil {
		log.Error().Str("quote_id", q.ID).Err(err).Msg("[quoteStore] failed to marshal quote")
		return
	}
	if err := s.db.Set(QuotesBucket, []byte(q.ID), data); err != nil {
		metrics.PersistenceWrites.WithLabelValues(QuotesBucket, "error").Inc()
		log.Error().Str("quote_id", q.ID).Err(err).Msg("[quoteStore] failed to persist quote")
		return
	}
	metrics.PersistenceWrites.WithLabelValues(QuotesBucket, "ok").Inc()
}

func (s *Store) persistQuoteBatch(quotes []*domain.Quote) {
	if s.db == nil || len(quotes) == 0 {
		return
	}

	batch := s.db.NewBatch()
	for _, q := range quotes {
		data, err := sonic.Marshal(quoteToStored(q))
		if err != nil {
			log.Error().Str("quote_id", q.ID).Err(err).Msg("[quoteStore] failed to marshal quote, skipping")
			continue
		}
		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(QuotesBucket),
			Key:    []byte(q.ID),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			log.Error().Str("quote_id", q.ID).Err(err).Msg("[quoteStore] failed to add quote to batch")
		}
	}
	if err := batch.Execute(); err != nil {
		metrics.PersistenceWrites.WithLabelValues(QuotesBucket, "error").Inc()
		log.Error().Err(err).Int("count", len(quotes)).Msg("[quoteStore] FAILED to execute quote batch")
		return
	}
	metrics.PersistenceWrites.WithLabelValues(QuotesBucket, "ok").Inc()
}

// loadAll restores quotes after a restart. Quotes whose TTL elapsed while
// the process was down come back as expired; records past the retention
// window stay in the journal only.
func (s *Store) loadAll() error {
	data, err := s.db.List(QuotesBucket)
	if err != nil {
		return fmt.Errorf("failed to list quotes: %w", err)
	}

	now := time.Now()
	loaded, failed := 0, 0
	for id, value := range data {
		var stored StoredQuote
		if err := sonic.Unmarshal(value, &stored); err != nil {
			log.Error().Str("quote_id", id).Err(err).Msg("[quoteStore] failed to unmarshal quote, skipping")
			failed++
			continue
		}
		q := storedToQuote(&stored)
		if q.Status == domain.QuoteStatusActive && q.Expired(now) {
			q.Status = domain.QuoteStatusExpired
		}
		if q.Status != domain.QuoteStatusActive && now.Sub(q.ExpiresAt) > expiredRetention {
			continue
		}
		s.quotes[q.ID] = q
		loaded++
	}

	if failed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", loaded).
			Int("failed", failed).
			Msg("[quoteStore] quote loading completed with errors")
	} else {
		log.Info().
			Int("total_in_db", len(data)).
			Int("loaded", loaded).
			Msg("[quoteStore] quote loading completed successfully")
	}
	return nil
}

func quoteToStored(q *domain.Quote) *StoredQuote {
	stored := &StoredQuote{
		ID:             q.ID,
		ChainID:        q.ChainID,
		TokenIn:        q.TokenIn,
		TokenOut:       q.TokenOut,
		Mode:           string(q.Mode),
		Path:           hex.EncodeToString(q.Path),
		PriceImpactPct: q.PriceImpactPct,
		CreatedAt:      q.CreatedAt.UnixNano(),
		ExpiresAt:      q.ExpiresAt.UnixNano(),
		Status:         string(q.Status),
		SwapID:         q.SwapID,
	}
	if q.AmountIn != nil {
		stored.AmountIn = q.AmountIn.String()
	}
	if q.AmountOut != nil {
		stored.AmountOut = q.AmountOut.String()
	}
	if q.AmountOutMinimum != nil {
		stored.AmountOutMinimum = q.AmountOutMinimum.String()
	}
	if q.AmountInMaximum != nil {
		stored.AmountInMaximum = q.AmountInMaximum.String()
	}
	if q.GasEstimate != nil {
		stored.GasEstimate = q.GasEstimate.String()
	}
	for _, h := range q.Route {
		stored.Route = append(stored.Route, StoredHop{
			TokenIn:  h.TokenIn.Hex(),
			TokenOut: h.TokenOut.Hex(),
			Fee:      h.Fee,
		})
	}
	return stored
}

func storedToQuote(stored *StoredQuote) *domain.Quote {
	q := &domain.Quote{
		ID:             stored.ID,
		ChainID:        stored.ChainID,
		TokenIn:        stored.TokenIn,
		TokenOut:       stored.TokenOut,
		Mode:           domain.SwapMode(stored.Mode),
		PriceImpactPct: stored.PriceImpactPct,
		CreatedAt:      time.Unix(0, stored.CreatedAt),
		ExpiresAt:      time.Unix(0, stored.ExpiresAt),
		Status:         domain.QuoteStatus(stored.Status),
		SwapID:         stored.SwapID,
	}
	q.AmountIn = parseBig(stored.AmountIn)
	q.AmountOut = parseBig(stored.AmountOut)
	q.AmountOutMinimum = parseBig(stored.AmountOutMinimum)
	q.AmountInMaximum = parseBig(stored.AmountInMaximum)
	q.GasEstimate = parseBig(stored.GasEstimate)
	q.Path, _ = hex.DecodeString(stored.Path)
	for _, h := range stored.Route {
		q.Route = append(q.Route, domain.Hop{
			TokenIn:  ethcommon.HexToAddress(h.TokenIn),
			TokenOut: ethcommon.HexToAddress(h.TokenOut),
			Fee:      h.Fee,
		})
	}
	return q
}

func parseBig(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil
	}
	return v
}
