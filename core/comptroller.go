package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ComptrollerID id of the single comptroller record
const ComptrollerID = "1"

// Comptroller protocol wide configuration record
type Comptroller struct {
	ID                   string          `sql:"size:8;PRIMARY_KEY" json:"id"`
	PriceOracle          string          `sql:"size:42" json:"price_oracle"`
	CloseFactor          decimal.Decimal `sql:"type:decimal(78,36)" json:"close_factor"`
	LiquidationIncentive decimal.Decimal `sql:"type:decimal(78,36)" json:"liquidation_incentive"`
	MaxAssets            int64           `sql:"default:0" json:"max_assets"`
	CreatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IComptrollerStore comptroller store interface
type IComptrollerStore interface {
	// Find returns an empty record with ID "1" when none was saved yet
	Find(ctx context.Context) (*Comptroller, error)
	Save(ctx context.Context, comptroller *Comptroller) error
}
