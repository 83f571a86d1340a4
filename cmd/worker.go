package cmd

import (
	"marketstate/worker"
	"marketstate/worker/market"
	"marketstate/worker/syncer"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "sync protocol events and refresh markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		s := provideStores()
		chain := provideChain(ctx)
		gate := provideGate(s, chain)

		workers := []worker.Worker{
			syncer.New(cfg.Chain, cfg.Worker.SyncSpec, chain, s.checkpoints, gate, s.markets, s.comptrollers, s.accounts, s.positions, s.ledger),
		}

		if cfg.Worker.RefreshSpec != "" {
			workers = append(workers, market.New(cfg.Worker.RefreshSpec, chain, s.checkpoints, s.markets, gate))
		}

		ctx, cancel := signalContext(ctx)
		defer cancel()

		var g errgroup.Group
		for _, w := range workers {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			g.Go(func() error {
				return serve(ctx, port, provideServer(s, gate, chain))
			})
		}

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().IntP("port", "p", 0, "also serve the api on port, required with in memory stores")
}
