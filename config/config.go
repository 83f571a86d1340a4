package config

import (
	"fmt"
	"strings"

	"marketstate/core"

	"github.com/asaskevich/govalidator"
)

// mainnet deployment, every value can be overridden by the config file or env
const (
	defaultNativeMarket       = "0xbee9cf658702527b0acb2719c1faa29edc006a92"
	defaultStableMarket       = "0x3774e825d567125988fb293e926064b6faa71dab"
	defaultStableUnderlying   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	defaultStableDecimals     = 6
	defaultLegacyOracle       = "0x02557a5e05defeffd4cae6d83ea3d173b272c904"
	defaultLegacyOracleCutoff = 7715908
	defaultBatchBlocks        = 1000
	defaultSyncSpec           = "@every 5s"
	// DefaultRefreshSpec cron spec of the market refresher when none is configured
	DefaultRefreshSpec = "@every 1m"

	daiV1Underlying = "0x89d24a6b4ccb1b6faa2625fe562bdd9a23260359"
)

func defaults(cfg *core.Config) {
	if cfg.Chain.BatchBlocks <= 0 {
		cfg.Chain.BatchBlocks = defaultBatchBlocks
	}

	p := &cfg.Protocol
	if p.NativeMarket == "" {
		p.NativeMarket = defaultNativeMarket
	}
	if p.StableMarket == "" {
		p.StableMarket = defaultStableMarket
	}
	if p.StableUnderlying == "" {
		p.StableUnderlying = defaultStableUnderlying
	}
	if p.StableDecimals == 0 {
		p.StableDecimals = defaultStableDecimals
	}
	if p.LegacyOracle == "" {
		p.LegacyOracle = defaultLegacyOracle
	}
	if p.LegacyOracleCutoff == 0 {
		p.LegacyOracleCutoff = defaultLegacyOracleCutoff
	}
	if len(p.MetadataOverrides) == 0 {
		p.MetadataOverrides = []core.MetadataOverride{
			{Token: daiV1Underlying, Name: "Dai Stablecoin v1.0 (DAI)", Symbol: "DAI"},
		}
	}

	if cfg.Worker.SyncSpec == "" {
		cfg.Worker.SyncSpec = defaultSyncSpec
	}
}

func normalize(cfg *core.Config) {
	cfg.Chain.Comptroller = strings.ToLower(cfg.Chain.Comptroller)
	for i, addr := range cfg.Chain.Markets {
		cfg.Chain.Markets[i] = strings.ToLower(addr)
	}

	p := &cfg.Protocol
	p.NativeMarket = strings.ToLower(p.NativeMarket)
	p.StableMarket = strings.ToLower(p.StableMarket)
	p.StableUnderlying = strings.ToLower(p.StableUnderlying)
	p.LegacyOracle = strings.ToLower(p.LegacyOracle)
	for i := range p.MetadataOverrides {
		p.MetadataOverrides[i].Token = strings.ToLower(p.MetadataOverrides[i].Token)
	}
}

// dialects whose decimal columns hold 36 fractional digits, empty keeps everything in memory
var supportedDialects = map[string]bool{
	"":         true,
	"postgres": true,
}

func validate(cfg *core.Config) error {
	if !supportedDialects[cfg.DB.Dialect] {
		return fmt.Errorf("unsupported db dialect %q", cfg.DB.Dialect)
	}

	for _, v := range []interface{}{&cfg.Chain, &cfg.Protocol} {
		if _, err := govalidator.ValidateStruct(v); err != nil {
			return err
		}
	}

	return nil
}
