package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/thehyperflames/swap-gateway/internal/common"
	"github.com/thehyperflames/swap-gateway/internal/config"
	"github.com/thehyperflames/swap-gateway/internal/engine"
	"github.com/thehyperflames/swap-gateway/internal/http"
)

// @title Swap Gateway API
// @version 1.0
// @description Token swap quoting and transaction construction gateway for Uniswap V3 style pools.
// @description
// @description ## - Features
// @description - **Smart Routing**: Direct pools at every fee tier plus two-hop routes through anchor tokens
// @description - **Slippage Protection**: Per-request tolerance with minimum-output / maximum-input bounds
// @description - **Price Impact Analysis**: USD-referenced impact with severity warnings
// @description - **Quote Lifecycle**: Quotes stay redeemable for a TTL and are consumed by swap builds
// @description - **Unsigned Transactions**: SwapRouter calldata ready for client-side signing
// @description
// @description ## - Usage Tips
// @description - Amounts are human decimal strings ("1.0" WETH, "3000" USDC)
// @description - Slippage is a percentage with up to two decimals, 0.1 to 50.0
// @description - Quotes expire; look them up with GET /api/v1/quote/{quoteId} (410 once expired)
// @description - Rate limit: 10 requests/second (burst: 20)
// @description
// @BasePath /
// @schemes https http
// @tag.name quote
// @tag.description Price swaps and issue redeemable quotes with slippage-protected bounds
// @tag.name swap
// @tag.description Build unsigned swap transactions from issued quotes
// @tag.name tokens
// @tag.description Inspect and manage the token allow-list

func main() {
	// Runtime tuning (GOGC, GOMAXPROCS, GOMEMLIMIT)
	common.InitRuntime()

	// load env
	err := godotenv.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.ChainConfig{},
		&config.EngineConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&engine.Service{},
		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
