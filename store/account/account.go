package account

import (
	"context"
	"strings"

	"marketstate/core"

	"github.com/fox-one/pkg/store/db"
)

type accountStore struct {
	db *db.DB
}

// New new account store
func New(db *db.DB) core.IAccountStore {
	return &accountStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Account{})
		if err := tx.AutoMigrate(core.Account{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *accountStore) Find(ctx context.Context, id string) (*core.Account, error) {
	var account core.Account
	if err := s.db.View().Where("id = ?", strings.ToLower(id)).First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *accountStore) Save(ctx context.Context, account *core.Account) error {
	account.ID = strings.ToLower(account.ID)
	return s.db.Update().Save(account).Error
}
