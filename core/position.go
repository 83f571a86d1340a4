package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AccountMarketPosition running balances of one account in one market
type AccountMarketPosition struct {
	// <market>-<account>
	ID                 string `sql:"size:96;PRIMARY_KEY" json:"id"`
	MarketID           string `sql:"size:42;index:idx_positions_market" json:"market_id"`
	AccountID          string `sql:"size:42;index:idx_positions_account" json:"account_id"`
	Symbol             string `sql:"size:32" json:"symbol"`
	AccrualBlockNumber int64  `sql:"default:0" json:"accrual_block_number"`
	// sToken balance
	Balance                 decimal.Decimal `sql:"type:decimal(78,36)" json:"balance"`
	TotalUnderlyingSupplied decimal.Decimal `sql:"type:decimal(78,36)" json:"total_underlying_supplied"`
	TotalUnderlyingRedeemed decimal.Decimal `sql:"type:decimal(78,36)" json:"total_underlying_redeemed"`
	AccountBorrowIndex      decimal.Decimal `sql:"type:decimal(78,36)" json:"account_borrow_index"`
	TotalUnderlyingBorrowed decimal.Decimal `sql:"type:decimal(78,36)" json:"total_underlying_borrowed"`
	TotalUnderlyingRepaid   decimal.Decimal `sql:"type:decimal(78,36)" json:"total_underlying_repaid"`
	StoredBorrowBalance     decimal.Decimal `sql:"type:decimal(78,36)" json:"stored_borrow_balance"`
	EnteredMarket           bool            `sql:"default:false" json:"entered_market"`
	CreatedAt               time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt               time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PositionID id of the position of account in market
func PositionID(marketID, accountID string) string {
	return marketID + "-" + accountID
}

// NewPosition zero valued position
func NewPosition(market *Market, accountID string) *AccountMarketPosition {
	return &AccountMarketPosition{
		ID:        PositionID(market.ID, accountID),
		MarketID:  market.ID,
		AccountID: accountID,
		Symbol:    market.Symbol,
	}
}

// IPositionStore position store interface
type IPositionStore interface {
	Find(ctx context.Context, id string) (*AccountMarketPosition, error)
	FindByAccount(ctx context.Context, accountID string) ([]*AccountMarketPosition, error)
	Save(ctx context.Context, position *AccountMarketPosition) error
}
