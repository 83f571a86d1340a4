package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketPrice resolved market prices
type MarketPrice struct {
	// price in the native unit
	Price decimal.Decimal `json:"price"`
	// price in the stable unit, zero when usd tracking is disabled
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// IPriceResolver price resolver interface
type IPriceResolver interface {
	Resolve(ctx context.Context, comptroller *Comptroller, market *Market, block int64) (*MarketPrice, error)
}
