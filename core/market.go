package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Market market state derived from one sToken contract
type Market struct {
	// market contract address, lower case hex
	ID                 string `sql:"size:42;PRIMARY_KEY" json:"id"`
	Symbol             string `sql:"size:32" json:"symbol"`
	Name               string `sql:"size:128" json:"name"`
	UnderlyingAddress  string `sql:"size:42" json:"underlying_address"`
	UnderlyingDecimals int32  `json:"underlying_decimals"`
	UnderlyingName     string `sql:"size:128" json:"underlying_name"`
	UnderlyingSymbol   string `sql:"size:32" json:"underlying_symbol"`
	// last block this market was recomputed at
	AccrualBlockNumber int64 `sql:"default:0" json:"accrual_block_number"`
	// accrualBlockNumber() reported by the contract at AccrualBlockNumber
	InterestAccrualBlock int64           `sql:"default:0" json:"interest_accrual_block"`
	BlockTimestamp       int64           `sql:"default:0" json:"block_timestamp"`
	ExchangeRate         decimal.Decimal `sql:"type:decimal(78,36)" json:"exchange_rate"`
	BorrowIndex          decimal.Decimal `sql:"type:decimal(78,36)" json:"borrow_index"`
	TotalSupply          decimal.Decimal `sql:"type:decimal(78,36)" json:"total_supply"`
	TotalBorrows         decimal.Decimal `sql:"type:decimal(78,36)" json:"total_borrows"`
	Reserves             decimal.Decimal `sql:"type:decimal(78,36)" json:"reserves"`
	Cash                 decimal.Decimal `sql:"type:decimal(78,36)" json:"cash"`
	// cash + total_borrows - reserves
	TotalDeposits      decimal.Decimal `sql:"type:decimal(78,36)" json:"total_deposits"`
	BorrowRatePerBlock decimal.Decimal `sql:"type:decimal(78,36)" json:"borrow_rate_per_block"`
	SupplyRatePerBlock decimal.Decimal `sql:"type:decimal(78,36)" json:"supply_rate_per_block"`
	// per block rate * blocks per year
	BorrowRate decimal.Decimal `sql:"type:decimal(78,36)" json:"borrow_rate"`
	SupplyRate decimal.Decimal `sql:"type:decimal(78,36)" json:"supply_rate"`
	// price in the native unit (ETH)
	UnderlyingPrice decimal.Decimal `sql:"type:decimal(78,36)" json:"underlying_price"`
	// price in the stable unit (USD)
	UnderlyingPriceUSD       decimal.Decimal `sql:"type:decimal(78,36)" json:"underlying_price_usd"`
	ReserveFactor            decimal.Decimal `sql:"type:decimal(78,36)" json:"reserve_factor"`
	CollateralFactor         decimal.Decimal `sql:"type:decimal(78,36)" json:"collateral_factor"`
	InterestRateModelAddress string          `sql:"size:42" json:"interest_rate_model_address"`
	Version                  int64           `sql:"default:0" json:"version"`
	CreatedAt                time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Trigger identifies the block (and optionally the log) that references a market
type Trigger struct {
	Market    string
	Block     int64
	Timestamp int64
	// optional, empty when the trigger is not a log
	TxHash   string
	LogIndex uint
	Event    string
}

// HasTx trigger carries a transaction identity
func (t Trigger) HasTx() bool {
	return t.TxHash != ""
}

// IMarketStore market store interface
type IMarketStore interface {
	// Find returns an error satisfying store.IsErrNotFound when the market does not exist
	Find(ctx context.Context, id string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	Save(ctx context.Context, market *Market) error
}

// IMarketService market state computer
type IMarketService interface {
	// Create reads the static market metadata from chain, nothing is persisted
	Create(ctx context.Context, address string, block int64) (*Market, error)
	// Refresh recomputes every scaled field of market at block with the resolved price
	Refresh(ctx context.Context, market *Market, block int64, price *MarketPrice) error
}

// IUpdateGate recomputes a market at most once per block
type IUpdateGate interface {
	EnsureUpdated(ctx context.Context, trigger Trigger) (*Market, error)
	// Apply runs fn on the (possibly new) market under the market lock and persists it,
	// without recomputing the chain derived fields
	Apply(ctx context.Context, trigger Trigger, fn func(market *Market) error) (*Market, error)
}
