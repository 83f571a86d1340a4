package syncer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"marketstate/core"
	"marketstate/internal/chaintest"
	"marketstate/service/market"
	"marketstate/service/oracle"
	"marketstate/store/memory"
	refresher "marketstate/worker/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	block = chaintest.Cutoff + 10

	alice = "0x00000000000000000000000000000000000a11ce"
	bob   = "0x0000000000000000000000000000000000000b0b"
)

type fixture struct {
	chain        *chaintest.Chain
	markets      *memory.MarketStore
	comptrollers *memory.ComptrollerStore
	accounts     *memory.AccountStore
	positions    *memory.PositionStore
	transactions *memory.TransactionStore
	checkpoints  *memory.CheckpointStore
	gate         *market.Gate
	syncer       *Syncer
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	protocol := chaintest.Protocol()
	chain := chaintest.New()
	chaintest.SetStableMarket(chain, block-3)

	f := &fixture{
		chain:        chain,
		markets:      memory.NewMarketStore(),
		comptrollers: memory.NewComptrollerStore(),
		accounts:     memory.NewAccountStore(),
		positions:    memory.NewPositionStore(),
		transactions: memory.NewTransactionStore(),
		checkpoints:  memory.NewCheckpointStore(),
	}
	require.Nil(t, f.comptrollers.Save(ctx, chaintest.ComptrollerRecord()))

	f.gate = market.NewGate(
		f.markets,
		f.comptrollers,
		f.transactions,
		market.New(protocol, chain),
		oracle.New(protocol, chain),
	)

	f.syncer = f.newSyncer(f.positions)
	return f
}

func (f *fixture) newSyncer(positions core.IPositionStore) *Syncer {
	return New(
		core.Chain{
			Comptroller: chaintest.Comptroller,
			StartBlock:  block,
			BatchBlocks: 100,
			Markets:     []string{chaintest.StableMarket},
		},
		"@every 1s",
		f.chain,
		f.checkpoints,
		f.gate,
		f.markets,
		f.comptrollers,
		f.accounts,
		positions,
		memory.NewLedger(f.transactions, f.accounts, positions),
	)
}

// positionStore fails the next failures saves
type positionStore struct {
	*memory.PositionStore
	failures int
}

func (s *positionStore) Save(ctx context.Context, position *core.AccountMarketPosition) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("connection reset")
	}

	return s.PositionStore.Save(ctx, position)
}

func num(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}

func newLog(address, event string, b int64, tx string, index uint, args map[string]interface{}) *core.Log {
	return &core.Log{
		Address:   address,
		Event:     event,
		Block:     b,
		Timestamp: 1561000000 + b - block,
		TxHash:    tx,
		LogIndex:  index,
		Args:      args,
	}
}

// alice supplies 10 USDC for 500 sUSDC, borrows 5 USDC and sends 100 sUSDC to bob
func (f *fixture) addActivity() {
	f.chain.AddLogs(
		newLog(chaintest.StableMarket, core.EventMint, block, "0x01", 0, map[string]interface{}{
			"minter":     alice,
			"mintAmount": num("10000000"),
			"mintTokens": num("50000000000"),
		}),
		newLog(chaintest.StableMarket, core.EventTransfer, block, "0x01", 1, map[string]interface{}{
			"from":   chaintest.StableMarket,
			"to":     alice,
			"amount": num("50000000000"),
		}),
		newLog(chaintest.StableMarket, core.EventBorrow, block+1, "0x02", 0, map[string]interface{}{
			"borrower":       alice,
			"borrowAmount":   num("5000000"),
			"accountBorrows": num("5000000"),
			"totalBorrows":   num("55000000"),
		}),
		newLog(chaintest.StableMarket, core.EventTransfer, block+2, "0x03", 0, map[string]interface{}{
			"from":   alice,
			"to":     bob,
			"amount": num("10000000000"),
		}),
	)
}

func (f *fixture) position(t *testing.T, account string) *core.AccountMarketPosition {
	p, err := f.positions.Find(context.Background(), core.PositionID(chaintest.StableMarket, account))
	require.Nil(t, err)
	return p
}

func TestSyncPositions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addActivity()

	require.Nil(t, f.syncer.OnWork(ctx))

	checkpoint, err := f.checkpoints.Checkpoint(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, block+2, checkpoint)

	p := f.position(t, alice)
	assert.Equal(t, "400", p.Balance.String())
	assert.Equal(t, "10", p.TotalUnderlyingSupplied.String())
	assert.Equal(t, "5", p.TotalUnderlyingBorrowed.String())
	assert.Equal(t, "5", p.StoredBorrowBalance.String())
	assert.Equal(t, "1.000000000000000001", p.AccountBorrowIndex.String())
	assert.EqualValues(t, block+2, p.AccrualBlockNumber)
	assert.Equal(t, "sUSDC", p.Symbol)

	assert.Equal(t, "100", f.position(t, bob).Balance.String())

	account, err := f.accounts.Find(ctx, alice)
	require.Nil(t, err)
	assert.True(t, account.HasBorrowed)

	_, err = f.positions.Find(ctx, core.PositionID(chaintest.StableMarket, chaintest.StableMarket))
	assert.NotNil(t, err)

	m, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.EqualValues(t, block+2, m.AccrualBlockNumber)
	assert.Equal(t, 3, f.markets.Saves())
}

func TestSyncRangeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addActivity()

	require.Nil(t, f.syncer.SyncRange(ctx, block, block+2))
	txs := f.transactions.Len()

	require.Nil(t, f.syncer.SyncRange(ctx, block, block+2))
	assert.Equal(t, txs, f.transactions.Len())

	p := f.position(t, alice)
	assert.Equal(t, "400", p.Balance.String())
	assert.Equal(t, "10", p.TotalUnderlyingSupplied.String())
	assert.Equal(t, "100", f.position(t, bob).Balance.String())
}

func TestSyncWaitsForHead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.chain.SetHead(block - 5)

	require.Nil(t, f.syncer.OnWork(ctx))

	checkpoint, err := f.checkpoints.Checkpoint(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 0, checkpoint)
}

func TestSyncNewlyListedMarket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	chaintest.SetMarket(f.chain, chaintest.DaiMarket, "sDAI", "200000000000000000000000000", block-1)
	f.chain.Set(chaintest.DaiMarket, core.MethodUnderlying, chaintest.DaiUnderlying)
	f.chain.Set(chaintest.DaiUnderlying, core.MethodDecimals, 18)
	f.chain.Set(chaintest.Oracle, core.MethodGetUnderlyingPrice, "5000000000000000", chaintest.DaiMarket)

	f.chain.AddLogs(
		newLog(chaintest.Comptroller, core.EventMarketListed, block, "0x10", 0, map[string]interface{}{
			"cToken": chaintest.DaiMarket,
		}),
		newLog(chaintest.DaiMarket, core.EventMint, block, "0x11", 0, map[string]interface{}{
			"minter":     alice,
			"mintAmount": num("1000000000000000000"),
			"mintTokens": num("5000000000"),
		}),
		newLog(chaintest.Comptroller, core.EventNewCollateralFactor, block, "0x12", 0, map[string]interface{}{
			"cToken":                      chaintest.DaiMarket,
			"oldCollateralFactorMantissa": num("0"),
			"newCollateralFactorMantissa": num("750000000000000000"),
		}),
		newLog(chaintest.Comptroller, core.EventMarketEntered, block, "0x13", 0, map[string]interface{}{
			"cToken":  chaintest.DaiMarket,
			"account": alice,
		}),
	)

	require.Nil(t, f.syncer.OnWork(ctx))

	m, err := f.markets.Find(ctx, chaintest.DaiMarket)
	require.Nil(t, err)
	assert.Equal(t, "sDAI", m.Symbol)
	assert.Equal(t, "0.75", m.CollateralFactor.String())

	p, err := f.positions.Find(ctx, core.PositionID(chaintest.DaiMarket, alice))
	require.Nil(t, err)
	assert.Equal(t, "1", p.TotalUnderlyingSupplied.String())
	assert.True(t, p.EnteredMarket)
}

func TestSyncComptrollerEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.chain.AddLogs(
		newLog(chaintest.Comptroller, core.EventNewCloseFactor, block, "0x20", 0, map[string]interface{}{
			"oldCloseFactorMantissa": num("0"),
			"newCloseFactorMantissa": num("500000000000000000"),
		}),
		newLog(chaintest.Comptroller, core.EventNewLiquidationIncentive, block, "0x20", 1, map[string]interface{}{
			"oldLiquidationIncentiveMantissa": num("0"),
			"newLiquidationIncentiveMantissa": num("1050000000000000000"),
		}),
		newLog(chaintest.Comptroller, core.EventNewMaxAssets, block, "0x20", 2, map[string]interface{}{
			"oldMaxAssets": num("0"),
			"newMaxAssets": num("20"),
		}),
		newLog(chaintest.Comptroller, core.EventNewPriceOracle, block+1, "0x21", 0, map[string]interface{}{
			"oldPriceOracle": chaintest.Oracle,
			"newPriceOracle": chaintest.LegacyOracle,
		}),
	)

	require.Nil(t, f.syncer.OnWork(ctx))

	c, err := f.comptrollers.Find(ctx)
	require.Nil(t, err)
	assert.Equal(t, "0.5", c.CloseFactor.String())
	assert.Equal(t, "1.05", c.LiquidationIncentive.String())
	assert.EqualValues(t, 20, c.MaxAssets)
	assert.Equal(t, chaintest.LegacyOracle, c.PriceOracle)
}

func TestSyncLiquidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	liquidation := newLog(chaintest.StableMarket, core.EventLiquidateBorrow, block, "0x30", 4, map[string]interface{}{
		"liquidator":       bob,
		"borrower":         alice,
		"repayAmount":      num("1000000"),
		"cTokenCollateral": chaintest.StableMarket,
		"seizeTokens":      num("100000000"),
	})
	f.chain.AddLogs(liquidation)

	require.Nil(t, f.syncer.SyncRange(ctx, block, block))
	require.Nil(t, f.syncer.SyncRange(ctx, block, block))

	borrower, err := f.accounts.Find(ctx, alice)
	require.Nil(t, err)
	assert.EqualValues(t, 1, borrower.CountLiquidated)
	assert.EqualValues(t, 0, borrower.CountLiquidator)

	liquidator, err := f.accounts.Find(ctx, bob)
	require.Nil(t, err)
	assert.EqualValues(t, 1, liquidator.CountLiquidator)
}

func TestSyncMarketParameterEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	model := "0x00000000000000000000000000000000000000f2"

	f.chain.AddLogs(
		newLog(chaintest.StableMarket, core.EventNewReserveFactor, block, "0x40", 0, map[string]interface{}{
			"oldReserveFactorMantissa": num("100000000000000000"),
			"newReserveFactorMantissa": num("200000000000000000"),
		}),
		newLog(chaintest.StableMarket, core.EventNewMarketInterestRateModel, block, "0x40", 1, map[string]interface{}{
			"oldInterestRateModel": chaintest.RateModel,
			"newInterestRateModel": model,
		}),
	)

	require.Nil(t, f.syncer.OnWork(ctx))

	m, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.Equal(t, "0.2", m.ReserveFactor.String())
	assert.Equal(t, model, m.InterestRateModelAddress)
}

func TestSyncRejectsMalformedLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.chain.AddLogs(newLog(chaintest.StableMarket, core.EventMint, block, "0x50", 0, map[string]interface{}{
		"minter": alice,
	}))

	assert.NotNil(t, f.syncer.OnWork(ctx))

	checkpoint, err := f.checkpoints.Checkpoint(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 0, checkpoint)
}

func TestSyncRetriesFailedPositionSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addActivity()

	positions := &positionStore{PositionStore: f.positions, failures: 1}
	s := f.newSyncer(positions)

	assert.NotNil(t, s.OnWork(ctx))

	txs, err := f.transactions.ListByEntity(ctx, core.PositionID(chaintest.StableMarket, alice), 0)
	require.Nil(t, err)
	assert.Len(t, txs, 0)

	checkpoint, err := f.checkpoints.Checkpoint(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 0, checkpoint)

	require.Nil(t, s.OnWork(ctx))

	p := f.position(t, alice)
	assert.Equal(t, "400", p.Balance.String())
	assert.Equal(t, "10", p.TotalUnderlyingSupplied.String())
	assert.Equal(t, "5", p.TotalUnderlyingBorrowed.String())
	assert.Equal(t, "100", f.position(t, bob).Balance.String())
}

func TestRefreshDoesNotOvertakeSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addActivity()

	f.chain.Set(chaintest.StableMarket, core.MethodBorrowIndex, "1500000000000000000")
	f.chain.SetAt(block+1, chaintest.StableMarket, core.MethodBorrowIndex, "1100000000000000000")
	f.chain.SetHead(block + 100)

	_, err := f.gate.EnsureUpdated(ctx, core.Trigger{Market: chaintest.StableMarket, Block: block - 2})
	require.Nil(t, err)
	require.Nil(t, f.checkpoints.SaveCheckpoint(ctx, block-1))

	w := refresher.New("@every 1m", f.chain, f.checkpoints, f.markets, f.gate)
	require.Nil(t, w.RunOnce(ctx))

	m, err := f.markets.Find(ctx, chaintest.StableMarket)
	require.Nil(t, err)
	assert.EqualValues(t, block-1, m.AccrualBlockNumber)

	require.Nil(t, f.syncer.OnWork(ctx))

	p := f.position(t, alice)
	assert.Equal(t, "1.1", p.AccountBorrowIndex.String())
	assert.Equal(t, "5", p.StoredBorrowBalance.String())
}

func TestSyncRejectsOutOfRangeValues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.chain.AddLogs(newLog(chaintest.Comptroller, core.EventNewMaxAssets, block, "0x60", 0, map[string]interface{}{
		"oldMaxAssets": num("0"),
		"newMaxAssets": num("18446744073709551616"),
	}))

	assert.NotNil(t, f.syncer.OnWork(ctx))

	c, err := f.comptrollers.Find(ctx)
	require.Nil(t, err)
	assert.EqualValues(t, 0, c.MaxAssets)
}
