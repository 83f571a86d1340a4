package market

import (
	"context"
	"fmt"
	"strings"

	"marketstate/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache read through cache in front of store, entries are copies so callers may mutate them
func Cache(store core.IMarketStore, size int) core.IMarketStore {
	return &cacheMarketStore{
		IMarketStore: store,
		cache:        gcache.New(size).LRU().Build(),
		sf:           &singleflight.Group{},
	}
}

type cacheMarketStore struct {
	core.IMarketStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheMarketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	key := s.marketKey(id)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(core.Market); ok {
			return &market, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		market, err := s.IMarketStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		s.cacheMarket(market)
		return *market, nil
	})
	if err != nil {
		return nil, err
	}

	market := v.(core.Market)
	return &market, nil
}

func (s *cacheMarketStore) Save(ctx context.Context, market *core.Market) error {
	if err := s.IMarketStore.Save(ctx, market); err != nil {
		// the stored version may have moved on
		s.cache.Remove(s.marketKey(market.ID))
		return err
	}

	s.cacheMarket(market)
	return nil
}

func (s *cacheMarketStore) cacheMarket(market *core.Market) {
	_ = s.cache.Set(s.marketKey(market.ID), *market)
}

func (s *cacheMarketStore) marketKey(id string) string {
	return fmt.Sprintf("market:id:%s", strings.ToLower(id))
}
