package syncer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"marketstate/core"
	"marketstate/internal/compound"
	"marketstate/pkg/metrics"
	"marketstate/worker"

	"github.com/fox-one/pkg/logger"
)

const defaultBatchBlocks = 1000

type handler func(ctx context.Context, l *core.Log) error

// Syncer pulls protocol logs block range by block range and applies them
type Syncer struct {
	worker.BaseJob

	chain        core.Chain
	logs         core.ILogSource
	checkpoints  core.ICheckpointStore
	gate         core.IUpdateGate
	markets      core.IMarketStore
	comptrollers core.IComptrollerStore
	accounts     core.IAccountStore
	positions    core.IPositionStore
	ledger       core.ILedgerStore

	marketHandlers      map[string]handler
	comptrollerHandlers map[string]handler
}

// New new sync worker
func New(
	chain core.Chain,
	spec string,
	logs core.ILogSource,
	checkpoints core.ICheckpointStore,
	gate core.IUpdateGate,
	markets core.IMarketStore,
	comptrollers core.IComptrollerStore,
	accounts core.IAccountStore,
	positions core.IPositionStore,
	ledger core.ILedgerStore,
) *Syncer {
	if chain.BatchBlocks <= 0 {
		chain.BatchBlocks = defaultBatchBlocks
	}
	chain.Comptroller = strings.ToLower(chain.Comptroller)

	w := &Syncer{
		chain:        chain,
		logs:         logs,
		checkpoints:  checkpoints,
		gate:         gate,
		markets:      markets,
		comptrollers: comptrollers,
		accounts:     accounts,
		positions:    positions,
		ledger:       ledger,
	}

	w.marketHandlers = map[string]handler{
		core.EventMint:                       w.handleMint,
		core.EventRedeem:                     w.handleRedeem,
		core.EventBorrow:                     w.handleBorrow,
		core.EventRepayBorrow:                w.handleRepayBorrow,
		core.EventLiquidateBorrow:            w.handleLiquidateBorrow,
		core.EventTransfer:                   w.handleTransfer,
		core.EventAccrueInterest:             w.handleAccrueInterest,
		core.EventNewReserveFactor:           w.handleNewReserveFactor,
		core.EventNewMarketInterestRateModel: w.handleNewInterestRateModel,
	}

	w.comptrollerHandlers = map[string]handler{
		core.EventMarketListed:            w.handleMarketListed,
		core.EventMarketEntered:           w.handleMarketEntered,
		core.EventMarketExited:            w.handleMarketExited,
		core.EventNewCollateralFactor:     w.handleNewCollateralFactor,
		core.EventNewPriceOracle:          w.handleNewPriceOracle,
		core.EventNewCloseFactor:          w.handleNewCloseFactor,
		core.EventNewLiquidationIncentive: w.handleNewLiquidationIncentive,
		core.EventNewMaxAssets:            w.handleNewMaxAssets,
	}

	w.Name = "syncer"
	w.Spec = spec
	w.OnWork = w.onWork

	return w
}

func (w *Syncer) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	checkpoint, err := w.checkpoints.Checkpoint(ctx)
	if err != nil {
		log.WithError(err).Errorln("checkpoints.Checkpoint")
		return err
	}

	if checkpoint < w.chain.StartBlock-1 {
		checkpoint = w.chain.StartBlock - 1
	}

	head, err := w.logs.Head(ctx)
	if err != nil {
		log.WithError(err).Errorln("logs.Head")
		return err
	}

	from, to, ok := compound.NextRange(checkpoint, head, w.chain.BatchBlocks)
	if !ok {
		return nil
	}

	if err := w.SyncRange(ctx, from, to); err != nil {
		log.WithError(err).Errorf("sync [%d, %d]", from, to)
		return err
	}

	if err := w.checkpoints.SaveCheckpoint(ctx, to); err != nil {
		log.WithError(err).Errorln("checkpoints.SaveCheckpoint", to)
		return err
	}

	metrics.SyncedBlock.Set(float64(to))
	log.Debugf("synced [%d, %d], head %d", from, to, head)
	return nil
}

// SyncRange applies the logs of [from, to] in order.
//
// Markets listed inside the range are watched right away and their logs of the range applied
// after the rest.
func (w *Syncer) SyncRange(ctx context.Context, from, to int64) error {
	watched, err := w.watched(ctx)
	if err != nil {
		return err
	}

	contracts := make([]string, 0, len(watched))
	for addr := range watched {
		contracts = append(contracts, addr)
	}
	sort.Strings(contracts)

	for len(contracts) > 0 {
		logs, err := w.logs.Logs(ctx, contracts, from, to)
		if err != nil {
			return err
		}

		contracts = nil
		for _, l := range logs {
			if err := w.handle(ctx, l); err != nil {
				return err
			}

			if l.Event == core.EventMarketListed && w.isComptroller(l.Address) {
				if addr, err := argAddress(l, "cToken"); err == nil && !watched[addr] {
					watched[addr] = true
					contracts = append(contracts, addr)
				}
			}
		}
	}

	return nil
}

func (w *Syncer) watched(ctx context.Context) (map[string]bool, error) {
	watched := map[string]bool{w.chain.Comptroller: true}
	for _, addr := range w.chain.Markets {
		watched[strings.ToLower(addr)] = true
	}

	markets, err := w.markets.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	for _, m := range markets {
		watched[m.ID] = true
	}

	return watched, nil
}

func (w *Syncer) isComptroller(address string) bool {
	return strings.EqualFold(address, w.chain.Comptroller)
}

func (w *Syncer) handle(ctx context.Context, l *core.Log) error {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"event": l.Event,
		"block": l.Block,
		"tx":    l.TxHash,
	})
	ctx = logger.WithContext(ctx, log)

	handlers := w.marketHandlers
	if w.isComptroller(l.Address) {
		handlers = w.comptrollerHandlers
	}

	h, ok := handlers[l.Event]
	if !ok {
		log.Debugln("no handler")
		return nil
	}

	if err := h(ctx, l); err != nil {
		log.WithError(err).Errorln("handle log")
		return fmt.Errorf("handle %s at %s#%d: %w", l.Event, l.TxHash, l.LogIndex, err)
	}

	metrics.EventsHandled.WithLabelValues(l.Event).Inc()
	return nil
}

func trigger(l *core.Log, market string) core.Trigger {
	return core.Trigger{
		Market:    strings.ToLower(market),
		Block:     l.Block,
		Timestamp: l.Timestamp,
		TxHash:    l.TxHash,
		LogIndex:  l.LogIndex,
		Event:     l.Event,
	}
}
