package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PositionTransaction one log that touched a position (or a market), never mutated
type PositionTransaction struct {
	// <entity>-<tx_hash>-<log_index>
	ID        string         `sql:"size:192;PRIMARY_KEY" json:"id"`
	TraceID   string         `sql:"size:36;unique_index:idx_position_transactions_trace_id" json:"trace_id"`
	EntityID  string         `sql:"size:96;index:idx_position_transactions_entity" json:"entity_id"`
	TxHash    string         `sql:"size:66" json:"tx_hash"`
	LogIndex  uint           `json:"log_index"`
	Block     int64          `json:"block"`
	Timestamp int64          `json:"timestamp"`
	Event     string         `sql:"size:64" json:"event"`
	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TransactionID composite id of a log touching entity
func TransactionID(entityID, txHash string, logIndex uint) string {
	return fmt.Sprintf("%s-%s-%d", entityID, txHash, logIndex)
}

// TransactionExtraData event payload
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	return make(TransactionExtraData)
}

// Put put data, big integers are kept as decimal strings
func (t TransactionExtraData) Put(key string, value interface{}) {
	if v, ok := value.(*big.Int); ok && v != nil {
		value = v.String()
	}

	t[key] = value
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// IPositionTransactionStore transaction store interface
type IPositionTransactionStore interface {
	// Create inserts tx if no record with the same id exists, created reports whether it did
	Create(ctx context.Context, tx *PositionTransaction) (created bool, err error)
	ListByEntity(ctx context.Context, entityID string, limit int) ([]*PositionTransaction, error)
}

// ILedgerStore applies the entity changes of one log together with its transaction record
type ILedgerStore interface {
	// Commit inserts tx and saves account and position (either may be nil) as one unit.
	// Nothing is written and applied is false when tx was recorded before.
	Commit(ctx context.Context, tx *PositionTransaction, account *Account, position *AccountMarketPosition) (applied bool, err error)
}
