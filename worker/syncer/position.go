package syncer

import (
	"context"
	"fmt"
	"strings"

	"marketstate/core"
	"marketstate/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/jmoiron/sqlx/types"
)

// commit writes the changes of l to entity together with its record, a log already recorded
// for entity changes nothing
func (w *Syncer) commit(ctx context.Context, entityID string, l *core.Log, account *core.Account, position *core.AccountMarketPosition) error {
	txID := core.TransactionID(entityID, l.TxHash, l.LogIndex)
	base := id.UUIDFromString(fmt.Sprintf("%s-%d", l.TxHash, l.LogIndex))

	applied, err := w.ledger.Commit(ctx, &core.PositionTransaction{
		ID:        txID,
		TraceID:   foxuuid.Modify(base, entityID),
		EntityID:  entityID,
		TxHash:    l.TxHash,
		LogIndex:  l.LogIndex,
		Block:     l.Block,
		Timestamp: l.Timestamp,
		Event:     l.Event,
		Data:      types.JSONText(extraData(l).Format()),
	}, account, position)
	if err != nil {
		return fmt.Errorf("commit %s: %w", txID, err)
	}

	if !applied {
		logger.FromContext(ctx).Debugf("%s already applied", txID)
	}

	return nil
}

func (w *Syncer) findAccount(ctx context.Context, accountID string) (*core.Account, error) {
	account, err := w.accounts.Find(ctx, accountID)
	if store.IsErrNotFound(err) {
		return &core.Account{ID: accountID}, nil
	}

	return account, err
}

// updateAccount applies fn to the account once per log
func (w *Syncer) updateAccount(ctx context.Context, accountID string, l *core.Log, fn func(account *core.Account)) error {
	accountID = strings.ToLower(accountID)

	account, err := w.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	fn(account)
	return w.commit(ctx, accountID, l, account, nil)
}

// updatePosition applies fn to the position of account in market once per log.
// The account is created on its first interaction.
func (w *Syncer) updatePosition(ctx context.Context, market *core.Market, accountID string, l *core.Log, fn func(position *core.AccountMarketPosition)) error {
	accountID = strings.ToLower(accountID)
	positionID := core.PositionID(market.ID, accountID)

	account, err := w.findAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if !account.CreatedAt.IsZero() {
		account = nil
	}

	position, err := w.positions.Find(ctx, positionID)
	if store.IsErrNotFound(err) {
		position, err = core.NewPosition(market, accountID), nil
	}

	if err != nil {
		return err
	}

	fn(position)
	position.Symbol = market.Symbol
	position.AccrualBlockNumber = l.Block
	return w.commit(ctx, positionID, l, account, position)
}
