package market

import (
	"context"

	"marketstate/core"
	"marketstate/internal/compound"
	"marketstate/pkg/concurrency"
	"marketstate/worker"

	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Worker recomputes every known market at the last synced block, so that markets without
// recent activity still carry current rates and prices.
//
// Markets are never moved past the sync checkpoint, events still to be applied would
// otherwise find them ahead of their own block.
type Worker struct {
	worker.BaseJob

	blocks      core.ILogSource
	checkpoints core.ICheckpointStore
	markets     core.IMarketStore
	gate        core.IUpdateGate
	limit       int
}

// New new market refresh worker
func New(
	spec string,
	blocks core.ILogSource,
	checkpoints core.ICheckpointStore,
	markets core.IMarketStore,
	gate core.IUpdateGate,
) *Worker {
	w := &Worker{
		blocks:      blocks,
		checkpoints: checkpoints,
		markets:     markets,
		gate:        gate,
		limit:       concurrency.DefaultMax,
	}

	w.Name = "market"
	w.Spec = spec
	w.OnWork = w.onWork

	return w
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	head, err := w.blocks.Head(ctx)
	if err != nil {
		log.WithError(err).Errorln("blocks.Head")
		return err
	}

	checkpoint, err := w.checkpoints.Checkpoint(ctx)
	if err != nil {
		log.WithError(err).Errorln("checkpoints.Checkpoint")
		return err
	}

	block, ok := compound.RefreshBlock(checkpoint, head)
	if !ok {
		log.Debugln("nothing synced yet")
		return nil
	}

	timestamp, err := w.blocks.BlockTimestamp(ctx, block)
	if err != nil {
		log.WithError(err).Errorln("blocks.BlockTimestamp", block)
		return err
	}

	markets, err := w.markets.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("markets.All")
		return err
	}

	golimit := concurrency.NewGoLimit(w.limit)
	var g errgroup.Group
	for _, m := range markets {
		id := m.ID
		golimit.Add()
		g.Go(func() error {
			defer golimit.Done()

			_, err := w.gate.EnsureUpdated(ctx, core.Trigger{
				Market:    id,
				Block:     block,
				Timestamp: timestamp,
			})
			if err != nil {
				log.WithError(err).Errorf("refresh market %s at %d", id, block)
			}

			return err
		})
	}

	return g.Wait()
}
