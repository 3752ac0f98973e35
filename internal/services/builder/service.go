// Package builder turns a redeemed quote into an unsigned SwapRouter
// transaction.
package builder

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/domain"
	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// swapRouterABI covers the path-based swap entrypoints.
const swapRouterABI = `[
	{"inputs":[{"components":[{"internalType":"bytes","name":"path","type":"bytes"},{"internalType":"address","name":"recipient","type":"address"},{"internalType":"uint256","name":"deadline","type":"uint256"},{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint256","name":"amountOutMinimum","type":"uint256"}],"internalType":"struct ISwapRouter.ExactInputParams","name":"params","type":"tuple"}],"name":"exactInput","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"}],"stateMutability":"payable","type":"function"},
	{"inputs":[{"components":[{"internalType":"bytes","name":"path","type":"bytes"},{"internalType":"address","name":"recipient","type":"address"},{"internalType":"uint256","name":"deadline","type":"uint256"},{"internalType":"uint256","name":"amountOut","type":"uint256"},{"internalType":"uint256","name":"amountInMaximum","type":"uint256"}],"internalType":"struct ISwapRouter.ExactOutputParams","name":"params","type":"tuple"}],"name":"exactOutput","outputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"}],"stateMutability":"payable","type":"function"}
]`

const defaultDeadline = 10 * time.Minute

type exactInputParams struct {
	Path             []byte
	Recipient        ethcommon.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

type exactOutputParams struct {
	Path            []byte
	Recipient       ethcommon.Address
	Deadline        *big.Int
	AmountOut       *big.Int
	AmountInMaximum *big.Int
}

// QuoteStore is the quote lifecycle surface the builder needs.
type QuoteStore interface {
	GetQuote(id string, now time.Time) (*domain.Quote, error)
	MarkUsed(id string, swapID string, now time.Time) (*domain.Quote, error)
}

// GasPricer supplies a gas price hint. May return nil when none is known.
type GasPricer interface {
	GasPrice() *big.Int
}

// Service builds unsigned swap transactions from stored quotes.
type Service struct {
	abi       abi.ABI
	router    ethcommon.Address
	store     QuoteStore
	gasPricer GasPricer
}

func NewService(router ethcommon.Address, store QuoteStore, gasPricer GasPricer) (*Service, error) {
	parsed, err := abi.JSON(strings.NewReader(swapRouterABI))
	if err != nil {
		return nil, fmt.Errorf("parse router ABI: %w", err)
	}
	return &Service{abi: parsed, router: router, store: store, gasPricer: gasPricer}, nil
}

// Build consumes a quote and returns the unsigned transaction. The quote is
// marked used only after calldata encoding succeeds.
func (s *Service) Build(req domain.SwapBuildRequest) (*domain.SwapBuildResponse, error) {
	start := time.Now()
	now := time.Now()

	q, err := s.store.GetQuote(req.QuoteID, now)
	if err != nil {
		metrics.SwapRequests.WithLabelValues("unknown", "rejected").Inc()
		return nil, err
	}
	if q.Status == domain.QuoteStatusUsed {
		metrics.SwapRequests.WithLabelValues(string(q.Mode), "rejected").Inc()
		return nil, common.HTTPErrorResourceConflict("quote already used")
	}
	if (req.Recipient == ethcommon.Address{}) {
		metrics.SwapRequests.WithLabelValues(string(q.Mode), "rejected").Inc()
		return nil, common.ErrInvalidInput
	}

	deadline := req.Deadline
	if deadline == 0 {
		deadline = now.Add(defaultDeadline).Unix()
	}
	if deadline <= now.Unix() {
		metrics.SwapRequests.WithLabelValues(string(q.Mode), "rejected").Inc()
		return nil, common.ErrInvalidInput
	}

	data, err := s.encode(q, req.Recipient, deadline)
	if err != nil {
		metrics.SwapRequests.WithLabelValues(string(q.Mode), "error").Inc()
		return nil, err
	}

	swapID := uuid.NewString()
	if _, err := s.store.MarkUsed(q.ID, swapID, now); err != nil {
		metrics.SwapRequests.WithLabelValues(string(q.Mode), "rejected").Inc()
		return nil, err
	}

	resp := &domain.SwapBuildResponse{
		SwapID:    swapID,
		To:        s.router.Hex(),
		Data:      "0x" + ethcommon.Bytes2Hex(data),
		Value:     "0",
		AmountIn:  q.AmountIn.String(),
		AmountOut: q.AmountOut.String(),
		Deadline:  deadline,
	}
	if q.AmountOutMinimum != nil {
		resp.AmountOutMinimum = q.AmountOutMinimum.String()
	}
	if q.AmountInMaximum != nil {
		resp.AmountInMaximum = q.AmountInMaximum.String()
	}
	if q.GasEstimate != nil {
		resp.GasEstimate = q.GasEstimate.String()
	}
	if s.gasPricer != nil {
		if price := s.gasPricer.GasPrice(); price != nil {
			resp.GasPriceWei = price.String()
		}
	}

	metrics.SwapRequests.WithLabelValues(string(q.Mode), "ok").Inc()
	metrics.SwapDuration.WithLabelValues(string(q.Mode)).Observe(time.Since(start).Seconds())
	log.Info().
		Str("swap_id", swapID).
		Str("quote_id", q.ID).
		Str("mode", string(q.Mode)).
		Msg("[builder] Built swap transaction")
	return resp, nil
}

func (s *Service) encode(q *domain.Quote, recipient ethcommon.Address, deadline int64) ([]byte, error) {
	if q.Mode == domain.ModeExactOut {
		return s.abi.Pack("exactOutput", exactOutputParams{
			Path:            q.Path,
			Recipient:       recipient,
			Deadline:        big.NewInt(deadline),
			AmountOut:       q.AmountOut,
			AmountInMaximum: q.AmountInMaximum,
		})
	}
	return s.abi.Pack("exactInput", exactInputParams{
		Path:             q.Path,
		Recipient:        recipient,
		Deadline:         big.NewInt(deadline),
		AmountIn:         q.AmountIn,
		AmountOutMinimum: q.AmountOutMinimum,
	})
}
