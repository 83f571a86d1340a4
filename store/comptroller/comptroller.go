package comptroller

import (
	"context"

	"marketstate/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type comptrollerStore struct {
	db *db.DB
}

// New new comptroller store
func New(db *db.DB) core.IComptrollerStore {
	return &comptrollerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Comptroller{})
		if err := tx.AutoMigrate(core.Comptroller{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *comptrollerStore) Find(ctx context.Context) (*core.Comptroller, error) {
	var comptroller core.Comptroller
	err := s.db.View().Where("id = ?", core.ComptrollerID).First(&comptroller).Error
	if store.IsErrNotFound(err) {
		return &core.Comptroller{ID: core.ComptrollerID}, nil
	}

	if err != nil {
		return nil, err
	}

	return &comptroller, nil
}

func (s *comptrollerStore) Save(ctx context.Context, comptroller *core.Comptroller) error {
	comptroller.ID = core.ComptrollerID
	return s.db.Update().Save(comptroller).Error
}
