package cmd

import (
	"fmt"
	"strings"

	"marketstate/core"
	"marketstate/store/memory"
	"marketstate/worker/syncer"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var inspectMarketCmd = &cobra.Command{
	Use:   "inspect-market <address>",
	Short: "compute a market at a block without persisting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		chain := provideChain(ctx)

		block, _ := cmd.Flags().GetInt64("block")
		if block <= 0 {
			head, err := chain.Head(ctx)
			if err != nil {
				return err
			}
			block = head
		}

		timestamp, err := chain.BlockTimestamp(ctx, block)
		if err != nil {
			return err
		}

		oracle, _ := cmd.Flags().GetString("oracle")
		comptrollers := memory.NewComptrollerStore()
		if err := comptrollers.Save(ctx, &core.Comptroller{ID: core.ComptrollerID, PriceOracle: oracle}); err != nil {
			return err
		}

		s := &stores{
			markets:      memory.NewMarketStore(),
			comptrollers: comptrollers,
			transactions: memory.NewTransactionStore(),
		}

		market, err := provideGate(s, chain).EnsureUpdated(ctx, core.Trigger{
			Market:    args[0],
			Block:     block,
			Timestamp: timestamp,
		})
		if err != nil {
			return err
		}

		printFields(cmd, market)
		return nil
	},
}

var listMarketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "list stored markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		markets, err := provideStores().markets.All(cmd.Context())
		if err != nil {
			return err
		}

		for _, m := range markets {
			cmd.Printf("%s\t%s\t%s\tblock %d\tsupply %s\tborrow %s\n",
				m.ID, m.Symbol, m.UnderlyingSymbol, m.AccrualBlockNumber,
				m.SupplyRate.StringFixed(4), m.BorrowRate.StringFixed(4))
		}

		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "apply the protocol events of a block range once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := provideStores()
		chain := provideChain(ctx)

		from, _ := cmd.Flags().GetInt64("from")
		to, _ := cmd.Flags().GetInt64("to")
		if to < from {
			return fmt.Errorf("invalid range [%d, %d]", from, to)
		}

		w := syncer.New(cfg.Chain, cfg.Worker.SyncSpec, chain, s.checkpoints, provideGate(s, chain), s.markets, s.comptrollers, s.accounts, s.positions, s.ledger)
		for start := from; start <= to; start += cfg.Chain.BatchBlocks {
			end := start + cfg.Chain.BatchBlocks - 1
			if end > to {
				end = to
			}

			if err := w.SyncRange(ctx, start, end); err != nil {
				return err
			}
			cmd.Printf("synced [%d, %d]\n", start, end)
		}

		return nil
	},
}

// printFields one line per field, named by its json tag
func printFields(cmd *cobra.Command, v interface{}) {
	for _, f := range structs.New(v).Fields() {
		if !f.IsExported() {
			continue
		}

		name := strings.Split(f.Tag(structs.DefaultTagName), ",")[0]
		if name == "" {
			name = f.Name()
		}

		cmd.Printf("%-28s %s\n", name, cast.ToString(f.Value()))
	}
}

func init() {
	rootCmd.AddCommand(inspectMarketCmd, listMarketsCmd, syncCmd)

	inspectMarketCmd.Flags().Int64("block", 0, "block height, default is the chain head")
	inspectMarketCmd.Flags().String("oracle", "", "versioned price oracle address")

	syncCmd.Flags().Int64("from", 0, "first block")
	syncCmd.Flags().Int64("to", 0, "last block")
}
