// Package oracle prices swap paths against the on-chain QuoterV2 contract.
package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/thehyperflames/swap-gateway/internal/metrics"
)

// quoterV2ABI covers the path-based quoting entrypoints. The quoter reverts
// internally to surface results, so these are eth_call only despite being
// declared nonpayable.
const quoterV2ABI = `[
	{"inputs":[{"internalType":"bytes","name":"path","type":"bytes"},{"internalType":"uint256","name":"amountIn","type":"uint256"}],"name":"quoteExactInput","outputs":[{"internalType":"uint256","name":"amountOut","type":"uint256"},{"internalType":"uint160[]","name":"sqrtPriceX96AfterList","type":"uint160[]"},{"internalType":"uint32[]","name":"initializedTicksCrossedList","type":"uint32[]"},{"internalType":"uint256","name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"bytes","name":"path","type":"bytes"},{"internalType":"uint256","name":"amountOut","type":"uint256"}],"name":"quoteExactOutput","outputs":[{"internalType":"uint256","name":"amountIn","type":"uint256"},{"internalType":"uint160[]","name":"sqrtPriceX96AfterList","type":"uint160[]"},{"internalType":"uint32[]","name":"initializedTicksCrossedList","type":"uint32[]"},{"internalType":"uint256","name":"gasEstimate","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}
]`

// Quoter wraps the QuoterV2 contract behind the router's oracle interface.
type Quoter struct {
	contract *bind.BoundContract
	address  ethcommon.Address
}

func NewQuoter(client *ethclient.Client, address ethcommon.Address) (*Quoter, error) {
	parsed, err := abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("parse quoter ABI: %w", err)
	}
	return &Quoter{
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		address:  address,
	}, nil
}

func (q *Quoter) Address() ethcommon.Address {
	return q.address
}

// QuoteExactInput returns the output amount and gas estimate for swapping
// amountIn along a forward-encoded path.
func (q *Quoter) QuoteExactInput(ctx context.Context, path []byte, amountIn *big.Int) (*big.Int, *big.Int, error) {
	return q.call(ctx, "quoteExactInput", path, amountIn)
}

// QuoteExactOutput returns the input amount and gas estimate needed to
// receive amountOut along a reverse-encoded path.
func (q *Quoter) QuoteExactOutput(ctx context.Context, path []byte, amountOut *big.Int) (*big.Int, *big.Int, error) {
	return q.call(ctx, "quoteExactOutput", path, amountOut)
}

func (q *Quoter) call(ctx context.Context, method string, path []byte, amount *big.Int) (*big.Int, *big.Int, error) {
	start := time.Now()
	var result []interface{}
	err := q.contract.Call(&bind.CallOpts{Context: ctx}, &result, method, path, amount)
	metrics.OracleCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(result) < 4 {
		return nil, nil, fmt.Errorf("%s: short result (%d values)", method, len(result))
	}

	amt, ok := result[0].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("%s: unexpected amount type %T", method, result[0])
	}
	gas, ok := result[3].(*big.Int)
	if !ok {
		return nil, nil, fmt.Errorf("%s: unexpected gas type %T", method, result[3])
	}
	return amt, gas, nil
}
