package transaction

import (
	"context"

	"marketstate/core"

	"github.com/fox-one/pkg/store/db"
)

const defaultLimit = 100

type transactionStore struct {
	db *db.DB
}

// New new transaction store
func New(db *db.DB) core.IPositionTransactionStore {
	return &transactionStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PositionTransaction{})
		if err := tx.AutoMigrate(core.PositionTransaction{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Create inserts transaction unless a record with the same id exists
func (s *transactionStore) Create(ctx context.Context, transaction *core.PositionTransaction) (bool, error) {
	var created bool
	err := s.db.Tx(func(tx *db.DB) error {
		var count int
		if err := tx.Update().Model(core.PositionTransaction{}).Where("id = ?", transaction.ID).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return nil
		}

		if err := tx.Update().Create(transaction).Error; err != nil {
			return err
		}

		created = true
		return nil
	})

	return created, err
}

func (s *transactionStore) ListByEntity(ctx context.Context, entityID string, limit int) ([]*core.PositionTransaction, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var transactions []*core.PositionTransaction
	if err := s.db.View().
		Where("entity_id = ?", entityID).
		Order("block DESC, log_index DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	return transactions, nil
}
