package checkpoint

import (
	"context"

	"marketstate/core"

	"github.com/fox-one/pkg/property"
)

const checkpointKey = "marketstate:syncer:checkpoint"

type checkpointStore struct {
	properties property.Store
}

// New checkpoint kept in the property store
func New(properties property.Store) core.ICheckpointStore {
	return &checkpointStore{properties: properties}
}

func (s *checkpointStore) Checkpoint(ctx context.Context) (int64, error) {
	v, err := s.properties.Get(ctx, checkpointKey)
	if err != nil {
		return 0, err
	}

	return v.Int64(), nil
}

func (s *checkpointStore) SaveCheckpoint(ctx context.Context, block int64) error {
	return s.properties.Save(ctx, checkpointKey, block)
}
