package config

import (
	"testing"

	"marketstate/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := core.Config{
		Chain: core.Chain{
			RPCEndpoint: "http://localhost:8545",
			Comptroller: "0x3D9819210A31b4961b30EF54bE2aeD79B9c9Cd3B",
			Markets:     []string{"0xBEE9cf658702527b0AcB2719c1FAA29EdC006a92"},
		},
	}

	defaults(&cfg)
	normalize(&cfg)
	require.Nil(t, validate(&cfg))

	assert.Equal(t, "0x3d9819210a31b4961b30ef54be2aed79b9c9cd3b", cfg.Chain.Comptroller)
	assert.Equal(t, defaultNativeMarket, cfg.Chain.Markets[0])
	assert.EqualValues(t, defaultBatchBlocks, cfg.Chain.BatchBlocks)
	assert.EqualValues(t, 7715908, cfg.Protocol.LegacyOracleCutoff)
	assert.EqualValues(t, 6, cfg.Protocol.StableDecimals)
	assert.Equal(t, defaultSyncSpec, cfg.Worker.SyncSpec)

	o, ok := cfg.Protocol.MetadataOverride("0x89D24A6b4CcB1B6fAA2625fE562bDD9a23260359")
	require.True(t, ok)
	assert.Equal(t, "DAI", o.Symbol)
}

func TestValidate(t *testing.T) {
	cfg := core.Config{
		Chain: core.Chain{
			RPCEndpoint: "http://localhost:8545",
			Comptroller: "comptroller",
		},
	}

	defaults(&cfg)
	assert.NotNil(t, validate(&cfg))

	cfg.Chain.Comptroller = ""
	assert.NotNil(t, validate(&cfg))

	cfg.Chain.Comptroller = "0x3d9819210a31b4961b30ef54be2aed79b9c9cd3b"
	require.Nil(t, validate(&cfg))

	cfg.DB.Dialect = "mysql"
	assert.NotNil(t, validate(&cfg))
}
