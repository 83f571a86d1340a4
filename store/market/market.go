package market

import (
	"context"
	"strings"

	"marketstate/core"

	"github.com/fox-one/pkg/store/db"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("id = ?", strings.ToLower(id)).First(&market).Error; err != nil {
		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.View().Order("id").Find(&markets).Error; err != nil {
		return nil, err
	}

	return markets, nil
}

// Save creates the market on its first save and updates it under an optimistic lock afterwards
func (s *marketStore) Save(ctx context.Context, market *core.Market) error {
	market.ID = strings.ToLower(market.ID)

	if market.Version == 0 {
		market.Version = 1
		if err := s.db.Update().Create(market).Error; err != nil {
			market.Version = 0
			return err
		}

		return nil
	}

	version := market.Version
	updates := toUpdateParams(market)
	updates["version"] = version + 1

	tx := s.db.Update().Model(core.Market{}).Where("id = ? AND version = ?", market.ID, version).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	market.Version = version + 1
	return nil
}

func toUpdateParams(market *core.Market) map[string]interface{} {
	return map[string]interface{}{
		"symbol":                      market.Symbol,
		"name":                        market.Name,
		"underlying_address":          market.UnderlyingAddress,
		"underlying_decimals":         market.UnderlyingDecimals,
		"underlying_name":             market.UnderlyingName,
		"underlying_symbol":           market.UnderlyingSymbol,
		"accrual_block_number":        market.AccrualBlockNumber,
		"interest_accrual_block":      market.InterestAccrualBlock,
		"block_timestamp":             market.BlockTimestamp,
		"exchange_rate":               market.ExchangeRate,
		"borrow_index":                market.BorrowIndex,
		"total_supply":                market.TotalSupply,
		"total_borrows":               market.TotalBorrows,
		"reserves":                    market.Reserves,
		"cash":                        market.Cash,
		"total_deposits":              market.TotalDeposits,
		"borrow_rate_per_block":       market.BorrowRatePerBlock,
		"supply_rate_per_block":       market.SupplyRatePerBlock,
		"borrow_rate":                 market.BorrowRate,
		"supply_rate":                 market.SupplyRate,
		"underlying_price":            market.UnderlyingPrice,
		"underlying_price_usd":        market.UnderlyingPriceUSD,
		"reserve_factor":              market.ReserveFactor,
		"collateral_factor":           market.CollateralFactor,
		"interest_rate_model_address": market.InterestRateModelAddress,
	}
}
