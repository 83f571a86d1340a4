package position

import (
	"context"
	"strings"

	"marketstate/core"

	"github.com/fox-one/pkg/store/db"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.AccountMarketPosition{})
		if err := tx.AutoMigrate(core.AccountMarketPosition{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Find(ctx context.Context, id string) (*core.AccountMarketPosition, error) {
	var position core.AccountMarketPosition
	if err := s.db.View().Where("id = ?", strings.ToLower(id)).First(&position).Error; err != nil {
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByAccount(ctx context.Context, accountID string) ([]*core.AccountMarketPosition, error) {
	var positions []*core.AccountMarketPosition
	if err := s.db.View().Where("account_id = ?", strings.ToLower(accountID)).Order("market_id").Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) Save(ctx context.Context, position *core.AccountMarketPosition) error {
	position.ID = strings.ToLower(position.ID)
	return s.db.Update().Save(position).Error
}
