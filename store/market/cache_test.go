package market

import (
	"context"
	"testing"

	"marketstate/core"
	"marketstate/store/memory"

	"github.com/fox-one/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*memory.MarketStore
	finds int
}

func (s *countingStore) Find(ctx context.Context, id string) (*core.Market, error) {
	s.finds++
	return s.MarketStore.Find(ctx, id)
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	backend := &countingStore{MarketStore: memory.NewMarketStore()}
	markets := Cache(backend, 16)

	_, err := markets.Find(ctx, "0xabc")
	assert.True(t, store.IsErrNotFound(err))

	require.Nil(t, markets.Save(ctx, &core.Market{ID: "0xabc", Symbol: "sABC"}))

	m, err := markets.Find(ctx, "0xABC")
	require.Nil(t, err)
	assert.Equal(t, "sABC", m.Symbol)
	assert.Equal(t, 1, backend.finds)

	// mutating a found market does not leak into the cache
	m.Cash = decimal.NewFromInt(7)
	again, err := markets.Find(ctx, "0xabc")
	require.Nil(t, err)
	assert.True(t, again.Cash.IsZero())
	assert.Equal(t, 1, backend.finds)
}
