package chaintest

import "marketstate/core"

// well known addresses used by tests
const (
	NativeMarket     = "0xbee9cf658702527b0acb2719c1faa29edc006a92"
	StableMarket     = "0x3774e825d567125988fb293e926064b6faa71dab"
	StableUnderlying = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	DaiMarket        = "0x0000000000000000000000000000000000000d01"
	DaiUnderlying    = "0x89d24a6b4ccb1b6faa2625fe562bdd9a23260359"
	WbtcMarket       = "0x0000000000000000000000000000000000000b01"
	WbtcUnderlying   = "0x0000000000000000000000000000000000000b02"
	LegacyOracle     = "0x02557a5e05defeffd4cae6d83ea3d173b272c904"
	Oracle           = "0x00000000000000000000000000000000000000a2"
	Comptroller      = "0x00000000000000000000000000000000000000c1"
	RateModel        = "0x00000000000000000000000000000000000000f1"
	Cutoff           = 7715908
)

// Protocol protocol config over the well known addresses
func Protocol() *core.Protocol {
	return &core.Protocol{
		NativeMarket:       NativeMarket,
		StableMarket:       StableMarket,
		StableUnderlying:   StableUnderlying,
		StableDecimals:     6,
		LegacyOracle:       LegacyOracle,
		LegacyOracleCutoff: Cutoff,
		TrackUSD:           true,
		MetadataOverrides: []core.MetadataOverride{
			{Token: DaiUnderlying, Name: "Dai Stablecoin v1.0 (DAI)", Symbol: "DAI"},
		},
	}
}

// ComptrollerRecord comptroller record pointing at Oracle
func ComptrollerRecord() *core.Comptroller {
	return &core.Comptroller{
		ID:          core.ComptrollerID,
		PriceOracle: Oracle,
	}
}

// SetMarket registers a healthy sToken contract: 1.23456789 tokens, 100 cash, 50 borrows,
// 1.234567 reserves (in underlying units of 6 decimals) and a 10% reserve factor
func SetMarket(chain *Chain, address, symbol, exchangeRate string, accrualBlock int64) {
	chain.Set(address, core.MethodSymbol, symbol)
	chain.Set(address, core.MethodName, "Compound "+symbol)
	chain.Set(address, core.MethodAccrualBlockNumber, accrualBlock)
	chain.Set(address, core.MethodTotalSupply, "123456789")
	chain.Set(address, core.MethodExchangeRateStored, exchangeRate)
	chain.Set(address, core.MethodBorrowIndex, "1000000000000000001")
	chain.Set(address, core.MethodTotalReserves, "1234567")
	chain.Set(address, core.MethodTotalBorrows, "50000000")
	chain.Set(address, core.MethodGetCash, "100000000")
	chain.Set(address, core.MethodBorrowRatePerBlock, "23782343987")
	chain.Set(address, core.MethodSupplyRatePerBlock, "11891171993")
	chain.Set(address, core.MethodInterestRateModel, RateModel)
	chain.Set(address, core.MethodReserveFactorMantissa, "100000000000000000")
}

// SetStableMarket registers the USDC market priced at 0.0025 ETH by Oracle
func SetStableMarket(chain *Chain, accrualBlock int64) {
	chain.Set(Oracle, core.MethodGetUnderlyingPrice, "2500000000000000000000000000", StableMarket)
	chain.Set(StableUnderlying, core.MethodDecimals, 6)
	chain.Set(StableUnderlying, core.MethodName, "USD Coin")
	chain.Set(StableUnderlying, core.MethodSymbol, "USDC")
	chain.Set(StableMarket, core.MethodUnderlying, StableUnderlying)
	SetMarket(chain, StableMarket, "sUSDC", "200000000000000", accrualBlock)
}
