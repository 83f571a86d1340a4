package cmd

import (
	"context"

	"marketstate/core"
	"marketstate/internal/evm"
	marketservice "marketstate/service/market"
	"marketstate/service/oracle"
	"marketstate/store/account"
	"marketstate/store/checkpoint"
	"marketstate/store/comptroller"
	"marketstate/store/ledger"
	"marketstate/store/market"
	"marketstate/store/memory"
	"marketstate/store/position"
	"marketstate/store/transaction"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/lib/pq"
)

const marketCacheSize = 256

// stores backing every command, in memory when no db dialect is configured
type stores struct {
	markets      core.IMarketStore
	comptrollers core.IComptrollerStore
	accounts     core.IAccountStore
	positions    core.IPositionStore
	transactions core.IPositionTransactionStore
	ledger       core.ILedgerStore
	checkpoints  core.ICheckpointStore
}

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideStores() *stores {
	if cfg.DB.Dialect == "" {
		accounts := memory.NewAccountStore()
		positions := memory.NewPositionStore()
		transactions := memory.NewTransactionStore()

		return &stores{
			markets:      memory.NewMarketStore(),
			comptrollers: memory.NewComptrollerStore(),
			accounts:     accounts,
			positions:    positions,
			transactions: transactions,
			ledger:       memory.NewLedger(transactions, accounts, positions),
			checkpoints:  memory.NewCheckpointStore(),
		}
	}

	database := provideDatabase()
	return &stores{
		markets:      market.Cache(market.New(database), marketCacheSize),
		comptrollers: comptroller.New(database),
		accounts:     account.New(database),
		positions:    position.New(database),
		transactions: transaction.New(database),
		ledger:       ledger.New(database),
		checkpoints:  checkpoint.New(providePropertyStore(database)),
	}
}

func provideChain(ctx context.Context) *evm.Client {
	backend, err := evm.Dial(ctx, cfg.Chain.RPCEndpoint)
	if err != nil {
		panic(err)
	}

	client, err := evm.New(backend)
	if err != nil {
		panic(err)
	}

	return client
}

func provideGate(s *stores, chain core.IChainReader) *marketservice.Gate {
	return marketservice.NewGate(
		s.markets,
		s.comptrollers,
		s.transactions,
		marketservice.New(&cfg.Protocol, chain),
		oracle.New(&cfg.Protocol, chain),
	)
}
