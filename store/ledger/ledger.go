package ledger

import (
	"context"
	"strings"

	"marketstate/core"

	"github.com/fox-one/pkg/store/db"
)

type ledgerStore struct {
	db *db.DB
}

// New new ledger store, writing to the account, position and transaction tables
func New(db *db.DB) core.ILedgerStore {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) Commit(ctx context.Context, transaction *core.PositionTransaction, account *core.Account, position *core.AccountMarketPosition) (bool, error) {
	var applied bool
	err := s.db.Tx(func(tx *db.DB) error {
		var count int
		if err := tx.Update().Model(core.PositionTransaction{}).Where("id = ?", transaction.ID).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return nil
		}

		if account != nil {
			account.ID = strings.ToLower(account.ID)
			if err := tx.Update().Save(account).Error; err != nil {
				return err
			}
		}

		if position != nil {
			position.ID = strings.ToLower(position.ID)
			if err := tx.Update().Save(position).Error; err != nil {
				return err
			}
		}

		if err := tx.Update().Create(transaction).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})

	return applied, err
}
