// Package common contains common constants and variables used across services
package common

import "github.com/ethereum/go-ethereum/common"

// FeeTiers are the allowed pool fee tiers in hundredths of a bip, ascending.
// Candidate generation order depends on this staying sorted.
var FeeTiers = []uint32{500, 3000, 10000}

// Mainnet contract addresses.
var (
	QuoterV2Address   = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")
	SwapRouterAddress = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
)

// Default anchor tokens for two-hop routing (mainnet).
var (
	WETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	USDT = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	DAI  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

var DefaultAnchors = []common.Address{WETH, USDC, USDT, DAI}

const (
	// BpsDenom is the basis-point denominator for slippage math.
	BpsDenom = 10000

	// Slippage tolerance bounds in bps ([0.1%, 50%]).
	MinSlippageBps = 10
	MaxSlippageBps = 5000
)
