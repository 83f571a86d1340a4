package market

import (
	"context"
	"errors"
	"testing"

	"marketstate/core"
	"marketstate/internal/chaintest"
	"marketstate/pkg/metrics"
	"marketstate/service/oracle"
	"marketstate/store/memory"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	block     = chaintest.Cutoff + 10
	timestamp = 1561000000
)

type fixture struct {
	chain        *chaintest.Chain
	markets      *memory.MarketStore
	transactions *memory.TransactionStore
	gate         *Gate
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	protocol := chaintest.Protocol()
	chain := chaintest.New()

	comptrollers := memory.NewComptrollerStore()
	require.Nil(t, comptrollers.Save(ctx, chaintest.ComptrollerRecord()))

	f := &fixture{
		chain:        chain,
		markets:      memory.NewMarketStore(),
		transactions: memory.NewTransactionStore(),
	}

	f.gate = NewGate(
		f.markets,
		comptrollers,
		f.transactions,
		New(protocol, chain),
		oracle.New(protocol, chain),
	)

	chaintest.SetStableMarket(chain, block-3)

	return f
}

func trigger(market string, b int64) core.Trigger {
	return core.Trigger{
		Market:    market,
		Block:     b,
		Timestamp: timestamp + b - block,
	}
}

func TestEnsureUpdatedCreatesStableMarket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	assert.Equal(t, chaintest.StableMarket, m.ID)
	assert.Equal(t, "sUSDC", m.Symbol)
	assert.Equal(t, chaintest.StableUnderlying, m.UnderlyingAddress)
	assert.EqualValues(t, 6, m.UnderlyingDecimals)
	assert.Equal(t, "USD Coin", m.UnderlyingName)
	assert.Equal(t, "USDC", m.UnderlyingSymbol)
	assert.EqualValues(t, block, m.AccrualBlockNumber)
	assert.EqualValues(t, block-3, m.InterestAccrualBlock)
	assert.EqualValues(t, timestamp, m.BlockTimestamp)

	assert.Equal(t, "0.020000000000000000", m.ExchangeRate.StringFixed(18))
	assert.Equal(t, "1.23456789", m.TotalSupply.String())
	assert.Equal(t, "1.000000000000000001", m.BorrowIndex.String())
	assert.Equal(t, "1.234567", m.Reserves.String())
	assert.Equal(t, "50", m.TotalBorrows.String())
	assert.Equal(t, "100", m.Cash.String())
	assert.Equal(t, "148.765433", m.TotalDeposits.String())
	assert.Equal(t, "0.000000023782343987", m.BorrowRatePerBlock.String())
	assert.Equal(t, "0.0499999999982688", m.BorrowRate.String())
	assert.Equal(t, "0.000000011891171993", m.SupplyRatePerBlock.String())
	assert.Equal(t, "0.1", m.ReserveFactor.String())
	assert.Equal(t, chaintest.RateModel, m.InterestRateModelAddress)

	assert.Equal(t, "0.0025", m.UnderlyingPrice.String())
	assert.True(t, m.UnderlyingPriceUSD.Equal(decimal.New(1, 0)))

	stored, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.Equal(t, m.ExchangeRate.String(), stored.ExchangeRate.String())
	assert.Equal(t, 1, f.markets.Saves())
}

func TestEnsureUpdatedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)
	calls := f.chain.TotalCalls()

	second, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	assert.Equal(t, 1, f.markets.Saves(), "second call must not write")
	assert.Equal(t, calls, f.chain.TotalCalls(), "second call must not read the chain")
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.ExchangeRate.String(), second.ExchangeRate.String())
	assert.Equal(t, first.UnderlyingPrice.String(), second.UnderlyingPrice.String())
}

func TestEnsureUpdatedIsMonotonic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, b := range []int64{block, block + 5, block + 2, block + 5, block + 9} {
		_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, b))
		require.Nil(t, err)
	}

	m, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.EqualValues(t, block+9, m.AccrualBlockNumber)
	assert.EqualValues(t, timestamp+9, m.BlockTimestamp)
	assert.Equal(t, 3, f.markets.Saves())
}

func TestEnsureUpdatedRecomputesOnNewBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	f.chain.SetAt(block+1, chaintest.StableMarket, core.MethodGetCash, "200000000")
	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block+1))
	require.Nil(t, err)
	assert.Equal(t, "200", m.Cash.String())
	assert.Equal(t, "248.765433", m.TotalDeposits.String())
}

func TestSupplyRateRevertIsRecovered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chain.Revert(chaintest.StableMarket, core.MethodSupplyRatePerBlock)

	failures := metrics.OptionalReadFailures.WithLabelValues(core.MethodSupplyRatePerBlock)
	before := testutil.ToFloat64(failures)

	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	assert.True(t, m.SupplyRatePerBlock.IsZero())
	assert.True(t, m.SupplyRate.IsZero())
	assert.Equal(t, "0.0499999999982688", m.BorrowRate.String())
	assert.Equal(t, before+1, testutil.ToFloat64(failures))

	stored, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.Equal(t, "100", stored.Cash.String())
}

func TestOptionalReadsFallBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chain.Revert(chaintest.StableMarket, core.MethodInterestRateModel)
	f.chain.Revert(chaintest.StableMarket, core.MethodReserveFactorMantissa)

	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)
	assert.Equal(t, core.ZeroAddress, m.InterestRateModelAddress)
	assert.True(t, m.ReserveFactor.IsZero())
}

func TestOptionalReadTransportErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	broken := errors.New("connection refused")
	f.chain.Set(chaintest.StableMarket, core.MethodSupplyRatePerBlock, broken)

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	assert.True(t, errors.Is(err, broken))
	assert.Equal(t, 0, f.markets.Saves())
}

func TestFatalReadLeavesNoPartialWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	f.chain.SetAt(block+1, chaintest.StableMarket, core.MethodGetCash, "900000000")
	f.chain.SetAt(block+1, chaintest.StableMarket, core.MethodTotalBorrows, core.ErrCallReverted)

	_, err = f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block+1))
	assert.True(t, core.IsReverted(err))

	m, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.EqualValues(t, block, m.AccrualBlockNumber)
	assert.Equal(t, "100", m.Cash.String())
	assert.Equal(t, 1, f.markets.Saves())
}

func TestCreateFailureLeavesNoMarket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chain.Revert(chaintest.StableUnderlying, core.MethodDecimals)

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	assert.True(t, core.IsReverted(err))

	markets, err := f.markets.All(ctx)
	require.Nil(t, err)
	assert.Len(t, markets, 0)
}

func TestNativeMarket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chaintest.SetMarket(f.chain, chaintest.NativeMarket, "sETH", "200000000000000000000000000", block-3)

	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.NativeMarket, block))
	require.Nil(t, err)

	assert.Equal(t, core.ZeroAddress, m.UnderlyingAddress)
	assert.EqualValues(t, 18, m.UnderlyingDecimals)
	assert.Equal(t, "Ether", m.UnderlyingName)
	assert.Equal(t, "ETH", m.UnderlyingSymbol)
	assert.Equal(t, 0, f.chain.Calls(chaintest.NativeMarket, core.MethodUnderlying))
	assert.Equal(t, 0, f.chain.Calls(chaintest.Oracle, core.MethodGetUnderlyingPrice, chaintest.NativeMarket))

	assert.True(t, m.UnderlyingPrice.Equal(decimal.New(1, 0)))
	assert.Equal(t, "400", m.UnderlyingPriceUSD.String())
	assert.Equal(t, "0.02", m.ExchangeRate.String())
	assert.Equal(t, "0.000000000001234567", m.Reserves.String())
}

func TestMetadataOverride(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chaintest.SetMarket(f.chain, chaintest.DaiMarket, "sDAI", "200000000000000000000000000", block-3)
	f.chain.Set(chaintest.DaiMarket, core.MethodUnderlying, chaintest.DaiUnderlying)
	f.chain.Set(chaintest.DaiUnderlying, core.MethodDecimals, 18)
	// 1 DAI = 0.005 ETH
	f.chain.Set(chaintest.Oracle, core.MethodGetUnderlyingPrice, "5000000000000000", chaintest.DaiMarket)

	m, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.DaiMarket, block))
	require.Nil(t, err)

	assert.Equal(t, "Dai Stablecoin v1.0 (DAI)", m.UnderlyingName)
	assert.Equal(t, "DAI", m.UnderlyingSymbol)
	assert.Equal(t, 0, f.chain.Calls(chaintest.DaiUnderlying, core.MethodName))
	assert.Equal(t, "0.005", m.UnderlyingPrice.String())
	assert.Equal(t, "2", m.UnderlyingPriceUSD.String())
}

func TestMarketTransactionsAreDeduplicated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tr := trigger(chaintest.StableMarket, block)
	tr.TxHash = "0xabc"
	tr.LogIndex = 3
	tr.Event = "AccrueInterest"

	for i := 0; i < 2; i++ {
		_, err := f.gate.EnsureUpdated(ctx, tr)
		require.Nil(t, err)
	}
	assert.Equal(t, 1, f.transactions.Len())

	tr.LogIndex = 4
	_, err := f.gate.EnsureUpdated(ctx, tr)
	require.Nil(t, err)
	assert.Equal(t, 2, f.transactions.Len())
	assert.Equal(t, 1, f.markets.Saves())

	txs, err := f.transactions.ListByEntity(ctx, chaintest.StableMarket, 10)
	require.Nil(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, core.TransactionID(chaintest.StableMarket, "0xabc", 4), txs[0].ID)
	assert.Equal(t, "AccrueInterest", txs[0].Event)
	assert.NotEqual(t, txs[0].TraceID, txs[1].TraceID)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	require.Nil(t, err)

	m, err := f.gate.Apply(ctx, trigger(chaintest.StableMarket, block), func(m *core.Market) error {
		m.CollateralFactor = decimal.RequireFromString("0.75")
		return nil
	})
	require.Nil(t, err)
	assert.Equal(t, "0.75", m.CollateralFactor.String())
	assert.Equal(t, 2, f.markets.Saves())

	stored, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.Equal(t, "0.75", stored.CollateralFactor.String())

	failed := errors.New("boom")
	_, err = f.gate.Apply(ctx, trigger(chaintest.StableMarket, block), func(m *core.Market) error {
		return failed
	})
	assert.Equal(t, failed, err)
	assert.Equal(t, 2, f.markets.Saves())
}

func TestHighDecimalsMarket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const (
		wideMarket     = "0x00000000000000000000000000000000000000e4"
		wideUnderlying = "0x00000000000000000000000000000000000000e5"
	)

	// exchangeRateStored carries 18 - 8 + 24 decimals
	chaintest.SetMarket(f.chain, wideMarket, "sWIDE", "200000000000000000000000000000000", block-3)
	f.chain.Set(wideMarket, core.MethodUnderlying, wideUnderlying)
	f.chain.Set(wideUnderlying, core.MethodDecimals, 24)
	f.chain.Set(wideUnderlying, core.MethodName, "Wide Token")
	f.chain.Set(wideUnderlying, core.MethodSymbol, "WIDE")
	// 0.005 ETH scaled by 10^(36 - 24)
	f.chain.Set(chaintest.Oracle, core.MethodGetUnderlyingPrice, "5000000000", wideMarket)

	m, err := f.gate.EnsureUpdated(ctx, trigger(wideMarket, block))
	require.Nil(t, err)

	assert.EqualValues(t, 24, m.UnderlyingDecimals)
	assert.Equal(t, "0.02", m.ExchangeRate.String())
	assert.Equal(t, "0.005", m.UnderlyingPrice.String())
	assert.Equal(t, "2", m.UnderlyingPriceUSD.String())
	assert.Equal(t, "0.0000000000000001", m.Cash.String())

	chaintest.SetMarket(f.chain, chaintest.DaiMarket, "sDAI", "200000000000000000000000000", block-3)
	f.chain.Set(chaintest.DaiMarket, core.MethodUnderlying, chaintest.DaiUnderlying)
	f.chain.Set(chaintest.DaiUnderlying, core.MethodDecimals, 37)

	_, err = f.gate.EnsureUpdated(ctx, trigger(chaintest.DaiMarket, block))
	assert.NotNil(t, err)
}

func TestAccrualBlockOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chain.Set(chaintest.StableMarket, core.MethodAccrualBlockNumber, "18446744073709551616")

	_, err := f.gate.EnsureUpdated(ctx, trigger(chaintest.StableMarket, block))
	assert.NotNil(t, err)
	assert.Equal(t, 0, f.markets.Saves())
}
