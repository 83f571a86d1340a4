package core

import (
	"strings"

	"github.com/fox-one/pkg/store/db"
)

// Config marketstate config
type Config struct {
	DB       db.Config `json:"db"`
	Chain    Chain     `json:"chain"`
	Protocol Protocol  `json:"protocol"`
	Worker   Worker    `json:"worker"`
}

// Chain chain access config
type Chain struct {
	RPCEndpoint string `json:"rpc_endpoint" valid:"required"`
	// comptroller contract address
	Comptroller string `json:"comptroller" valid:"required,matches(^0x[0-9a-fA-F]{40}$)"`
	// first block to ingest
	StartBlock int64 `json:"start_block"`
	// max blocks per log query
	BatchBlocks int64 `json:"batch_blocks"`
	// markets always watched besides the ones already stored
	Markets []string `json:"markets"`
}

// Protocol protocol constants, historical addresses and cutoffs
type Protocol struct {
	// market whose underlying is the native asset (sETH)
	NativeMarket string `json:"native_market" valid:"required,matches(^0x[0-9a-fA-F]{40}$)"`
	// market of the usd pegged stable reference (sUSDC)
	StableMarket string `json:"stable_market" valid:"required,matches(^0x[0-9a-fA-F]{40}$)"`
	// underlying token of StableMarket, used with the legacy oracle
	StableUnderlying string `json:"stable_underlying" valid:"required,matches(^0x[0-9a-fA-F]{40}$)"`
	StableDecimals   int32  `json:"stable_decimals"`
	// first generation oracle, addressed directly
	LegacyOracle string `json:"legacy_oracle" valid:"matches(^0x[0-9a-fA-F]{40}$)"`
	// blocks below the cutoff are priced by LegacyOracle
	LegacyOracleCutoff int64 `json:"legacy_oracle_cutoff"`
	// derive stable unit prices
	TrackUSD bool `json:"track_usd"`
	// underlying token metadata that is wrong or missing on chain
	MetadataOverrides []MetadataOverride `json:"metadata_overrides"`
}

// MetadataOverride manual token metadata
type MetadataOverride struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Worker worker config
type Worker struct {
	// cron spec of the log syncer
	SyncSpec string `json:"sync_spec"`
	// cron spec of the market refresher, empty disables it
	RefreshSpec string `json:"refresh_spec"`
}

// IsNativeMarket is the native asset market
func (p *Protocol) IsNativeMarket(address string) bool {
	return strings.EqualFold(p.NativeMarket, address)
}

// IsStableMarket is the stable reference market
func (p *Protocol) IsStableMarket(address string) bool {
	return strings.EqualFold(p.StableMarket, address)
}

// MetadataOverride override of token, ok is false when none
func (p *Protocol) MetadataOverride(token string) (MetadataOverride, bool) {
	for _, o := range p.MetadataOverrides {
		if strings.EqualFold(o.Token, token) {
			return o, true
		}
	}

	return MetadataOverride{}, false
}
