package market

import (
	"context"
	"fmt"
	"strings"

	"marketstate/core"
	"marketstate/pkg/concurrency"
	"marketstate/pkg/id"
	"marketstate/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store"
	"github.com/jmoiron/sqlx/types"
)

// gate outcomes, used as metric labels
const (
	resultCreated = "created"
	resultUpdated = "updated"
	resultSkipped = "skipped"
	resultStale   = "stale"
	resultFailed  = "failed"
)

// Gate recomputes a market at most once per block
type Gate struct {
	markets      core.IMarketStore
	comptrollers core.IComptrollerStore
	transactions core.IPositionTransactionStore
	marketz      core.IMarketService
	prices       core.IPriceResolver
	locks        *concurrency.KeyedMutex
}

// NewGate new update gate
func NewGate(
	markets core.IMarketStore,
	comptrollers core.IComptrollerStore,
	transactions core.IPositionTransactionStore,
	marketz core.IMarketService,
	prices core.IPriceResolver,
) *Gate {
	return &Gate{
		markets:      markets,
		comptrollers: comptrollers,
		transactions: transactions,
		marketz:      marketz,
		prices:       prices,
		locks:        concurrency.NewKeyedMutex(),
	}
}

var _ core.IUpdateGate = (*Gate)(nil)

// EnsureUpdated brings the market referenced by trigger up to trigger.Block.
//
// A market already computed at the block, or at a later one, is returned unchanged.
func (g *Gate) EnsureUpdated(ctx context.Context, trigger core.Trigger) (*core.Market, error) {
	return g.update(ctx, trigger, nil)
}

// Apply like EnsureUpdated, then runs fn on the market and persists it
func (g *Gate) Apply(ctx context.Context, trigger core.Trigger, fn func(market *core.Market) error) (*core.Market, error) {
	return g.update(ctx, trigger, fn)
}

func (g *Gate) update(ctx context.Context, trigger core.Trigger, fn func(market *core.Market) error) (*core.Market, error) {
	trigger.Market = strings.ToLower(trigger.Market)
	log := logger.FromContext(ctx).WithField("market", trigger.Market)
	ctx = logger.WithContext(ctx, log)

	unlock := g.locks.Lock(trigger.Market)
	defer unlock()

	market, result, err := g.ensure(ctx, trigger)
	if err != nil {
		metrics.MarketUpdates.WithLabelValues(resultFailed).Inc()
		log.WithError(err).Errorf("update market at %d failed", trigger.Block)
		return nil, err
	}

	dirty := result == resultCreated || result == resultUpdated
	if fn != nil {
		if err := fn(market); err != nil {
			metrics.MarketUpdates.WithLabelValues(resultFailed).Inc()
			return nil, err
		}

		dirty = true
	}

	if dirty {
		if err := g.markets.Save(ctx, market); err != nil {
			metrics.MarketUpdates.WithLabelValues(resultFailed).Inc()
			log.WithError(err).Errorln("markets.Save")
			return nil, err
		}
	}

	metrics.MarketUpdates.WithLabelValues(result).Inc()

	if trigger.HasTx() {
		if err := g.recordTransaction(ctx, market, trigger); err != nil {
			log.WithError(err).Errorln("record market transaction")
			return nil, err
		}
	}

	return market, nil
}

// ensure loads or creates the market and recomputes it when due, nothing is persisted
func (g *Gate) ensure(ctx context.Context, trigger core.Trigger) (*core.Market, string, error) {
	log := logger.FromContext(ctx)

	market, err := g.markets.Find(ctx, trigger.Market)
	created := false
	if err != nil {
		if !store.IsErrNotFound(err) {
			return nil, "", err
		}

		if market, err = g.marketz.Create(ctx, trigger.Market, trigger.Block); err != nil {
			return nil, "", fmt.Errorf("create market: %w", err)
		}

		created = true
		log.Infof("market %s (%s) created at %d", market.Symbol, market.UnderlyingSymbol, trigger.Block)
	}

	switch {
	case !created && trigger.Block == market.AccrualBlockNumber:
		return market, resultSkipped, nil
	case !created && trigger.Block < market.AccrualBlockNumber:
		log.Debugf("stale trigger at %d, market at %d", trigger.Block, market.AccrualBlockNumber)
		return market, resultStale, nil
	}

	comptroller, err := g.comptrollers.Find(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load comptroller: %w", err)
	}

	price, err := g.prices.Resolve(ctx, comptroller, market, trigger.Block)
	if err != nil {
		return nil, "", fmt.Errorf("resolve price: %w", err)
	}

	if err := g.marketz.Refresh(ctx, market, trigger.Block, price); err != nil {
		return nil, "", fmt.Errorf("refresh market: %w", err)
	}

	market.AccrualBlockNumber = trigger.Block
	market.BlockTimestamp = trigger.Timestamp

	if created {
		return market, resultCreated, nil
	}

	return market, resultUpdated, nil
}

func (g *Gate) recordTransaction(ctx context.Context, market *core.Market, trigger core.Trigger) error {
	extra := core.NewTransactionExtra()
	extra.Put("symbol", market.Symbol)
	extra.Put("accrual_block_number", market.AccrualBlockNumber)

	txID := core.TransactionID(market.ID, trigger.TxHash, trigger.LogIndex)
	_, err := g.transactions.Create(ctx, &core.PositionTransaction{
		ID:        txID,
		TraceID:   id.UUIDFromString(txID),
		EntityID:  market.ID,
		TxHash:    trigger.TxHash,
		LogIndex:  trigger.LogIndex,
		Block:     trigger.Block,
		Timestamp: trigger.Timestamp,
		Event:     trigger.Event,
		Data:      types.JSONText(extra.Format()),
	})

	return err
}
