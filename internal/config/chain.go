package config

import (
	"errors"
	"os"
	"strings"

	envutil "github.com/andrew-solarstorm/go-packages/common"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/thehyperflames/swap-gateway/internal/common"
)

// ChainConfig describes the EVM endpoint and the on-chain contracts the
// gateway quotes and builds against.
type ChainConfig struct {
	RPCUrl  string
	ChainID int64

	// QuoterAddress is the QuoterV2 contract used for route evaluation.
	QuoterAddress ethcommon.Address
	// RouterAddress is the SwapRouter contract swap calldata targets.
	RouterAddress ethcommon.Address

	// Anchors are intermediate tokens for two-hop candidates, in priority
	// order. Candidate generation order (and therefore tie-breaking)
	// depends on this ordering.
	Anchors []ethcommon.Address
}

func (c *ChainConfig) Key() string {
	return CHAIN_CONFIG_KEY
}

func (c *ChainConfig) Load() error {
	c.RPCUrl = os.Getenv("RPC_URL")
	c.ChainID = int64(envutil.GetEnvOrDefaultInt("CHAIN_ID", 1))

	c.QuoterAddress = common.QuoterV2Address
	if v := os.Getenv("QUOTER_ADDRESS"); v != "" {
		c.QuoterAddress = ethcommon.HexToAddress(v)
	}
	c.RouterAddress = common.SwapRouterAddress
	if v := os.Getenv("ROUTER_ADDRESS"); v != "" {
		c.RouterAddress = ethcommon.HexToAddress(v)
	}

	c.Anchors = common.DefaultAnchors
	if v := os.Getenv("ANCHOR_TOKENS"); v != "" {
		c.Anchors = nil
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			c.Anchors = append(c.Anchors, ethcommon.HexToAddress(part))
		}
	}
	return nil
}

func (c *ChainConfig) Validate() error {
	if c.RPCUrl == "" {
		return errors.New("invalid chain config: RPC_URL is required")
	}
	if c.ChainID <= 0 {
		return errors.New("invalid chain config: CHAIN_ID must be positive")
	}
	if len(c.Anchors) == 0 {
		return errors.New("invalid chain config: at least one anchor token is required")
	}
	return nil
}
