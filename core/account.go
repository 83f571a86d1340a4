package core

import (
	"context"
	"time"
)

// Account one per address that ever touched a market
type Account struct {
	ID              string    `sql:"size:42;PRIMARY_KEY" json:"id"`
	CountLiquidated int64     `sql:"default:0" json:"count_liquidated"`
	CountLiquidator int64     `sql:"default:0" json:"count_liquidator"`
	HasBorrowed     bool      `sql:"default:false" json:"has_borrowed"`
	CreatedAt       time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IAccountStore account store interface
type IAccountStore interface {
	Find(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}
