// Package memory keeps every entity in process memory.
//
// Used when no database is configured and by tests. Records are copied on the way in and
// out so callers never share state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketstate/core"

	"github.com/jinzhu/gorm"
)

// MarketStore in memory core.IMarketStore
type MarketStore struct {
	mu      sync.RWMutex
	markets map[string]core.Market
	saves   int
}

// NewMarketStore new market store
func NewMarketStore() *MarketStore {
	return &MarketStore{markets: make(map[string]core.Market)}
}

// Find implements core.IMarketStore
func (s *MarketStore) Find(_ context.Context, id string) (*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markets[strings.ToLower(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &m, nil
}

// All implements core.IMarketStore
func (s *MarketStore) All(_ context.Context) ([]*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markets := make([]*core.Market, 0, len(s.markets))
	for _, m := range s.markets {
		m := m
		markets = append(markets, &m)
	}

	sort.Slice(markets, func(i, j int) bool {
		return markets[i].ID < markets[j].ID
	})

	return markets, nil
}

// Save implements core.IMarketStore
func (s *MarketStore) Save(_ context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if market.CreatedAt.IsZero() {
		market.CreatedAt = now
	}
	market.UpdatedAt = now
	market.Version++

	s.markets[strings.ToLower(market.ID)] = *market
	s.saves++
	return nil
}

// Saves number of Save calls
func (s *MarketStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}

// ComptrollerStore in memory core.IComptrollerStore
type ComptrollerStore struct {
	mu          sync.RWMutex
	comptroller core.Comptroller
}

// NewComptrollerStore new comptroller store
func NewComptrollerStore() *ComptrollerStore {
	return &ComptrollerStore{comptroller: core.Comptroller{ID: core.ComptrollerID}}
}

// Find implements core.IComptrollerStore
func (s *ComptrollerStore) Find(_ context.Context) (*core.Comptroller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.comptroller
	return &c, nil
}

// Save implements core.IComptrollerStore
func (s *ComptrollerStore) Save(_ context.Context, comptroller *core.Comptroller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comptroller.ID = core.ComptrollerID
	comptroller.UpdatedAt = time.Now()
	s.comptroller = *comptroller
	return nil
}

// AccountStore in memory core.IAccountStore
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]core.Account
}

// NewAccountStore new account store
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]core.Account)}
}

// Find implements core.IAccountStore
func (s *AccountStore) Find(_ context.Context, id string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[strings.ToLower(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &a, nil
}

// Save implements core.IAccountStore
func (s *AccountStore) Save(_ context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	s.accounts[strings.ToLower(account.ID)] = *account
	return nil
}

// PositionStore in memory core.IPositionStore
type PositionStore struct {
	mu        sync.RWMutex
	positions map[string]core.AccountMarketPosition
}

// NewPositionStore new position store
func NewPositionStore() *PositionStore {
	return &PositionStore{positions: make(map[string]core.AccountMarketPosition)}
}

// Find implements core.IPositionStore
func (s *PositionStore) Find(_ context.Context, id string) (*core.AccountMarketPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[strings.ToLower(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	return &p, nil
}

// FindByAccount implements core.IPositionStore
func (s *PositionStore) FindByAccount(_ context.Context, accountID string) ([]*core.AccountMarketPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var positions []*core.AccountMarketPosition
	for _, p := range s.positions {
		if strings.EqualFold(p.AccountID, accountID) {
			p := p
			positions = append(positions, &p)
		}
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].MarketID < positions[j].MarketID
	})

	return positions, nil
}

// Save implements core.IPositionStore
func (s *PositionStore) Save(_ context.Context, position *core.AccountMarketPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if position.CreatedAt.IsZero() {
		position.CreatedAt = now
	}
	position.UpdatedAt = now

	s.positions[strings.ToLower(position.ID)] = *position
	return nil
}

// TransactionStore in memory core.IPositionTransactionStore
type TransactionStore struct {
	mu           sync.RWMutex
	transactions []core.PositionTransaction
	ids          map[string]bool
}

// NewTransactionStore new transaction store
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{ids: make(map[string]bool)}
}

// Create implements core.IPositionTransactionStore
func (s *TransactionStore) Create(_ context.Context, tx *core.PositionTransaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[tx.ID] {
		return false, nil
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	s.ids[tx.ID] = true
	s.transactions = append(s.transactions, *tx)
	return true, nil
}

// ListByEntity implements core.IPositionTransactionStore, newest first
func (s *TransactionStore) ListByEntity(_ context.Context, entityID string, limit int) ([]*core.PositionTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*core.PositionTransaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if limit > 0 && len(txs) >= limit {
			break
		}

		if tx := s.transactions[i]; strings.EqualFold(tx.EntityID, entityID) {
			txs = append(txs, &tx)
		}
	}

	return txs, nil
}

func (s *TransactionStore) has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ids[id]
}

// Len number of transactions
func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.transactions)
}

// CheckpointStore in memory core.ICheckpointStore
type CheckpointStore struct {
	mu    sync.RWMutex
	block int64
}

// NewCheckpointStore new checkpoint store
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{}
}

// Checkpoint implements core.ICheckpointStore
func (s *CheckpointStore) Checkpoint(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.block, nil
}

// SaveCheckpoint implements core.ICheckpointStore
func (s *CheckpointStore) SaveCheckpoint(_ context.Context, block int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.block = block
	return nil
}

// Ledger in memory core.ILedgerStore.
//
// Entities are saved before the record is inserted, a failed save leaves the log unrecorded
// so that it is applied again on retry.
type Ledger struct {
	mu           sync.Mutex
	transactions *TransactionStore
	accounts     core.IAccountStore
	positions    core.IPositionStore
}

// NewLedger new ledger over the given stores
func NewLedger(transactions *TransactionStore, accounts core.IAccountStore, positions core.IPositionStore) *Ledger {
	return &Ledger{
		transactions: transactions,
		accounts:     accounts,
		positions:    positions,
	}
}

// Commit implements core.ILedgerStore
func (l *Ledger) Commit(ctx context.Context, tx *core.PositionTransaction, account *core.Account, position *core.AccountMarketPosition) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.transactions.has(tx.ID) {
		return false, nil
	}

	if account != nil {
		if err := l.accounts.Save(ctx, account); err != nil {
			return false, err
		}
	}

	if position != nil {
		if err := l.positions.Save(ctx, position); err != nil {
			return false, err
		}
	}

	return l.transactions.Create(ctx, tx)
}
