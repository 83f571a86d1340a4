package syncer

import (
	"context"

	"marketstate/core"
	"marketstate/internal/compound"
)

// Mint(minter, mintAmount, mintTokens), the minted tokens arrive with the Transfer from the market
func (w *Syncer) handleMint(ctx context.Context, l *core.Log) error {
	minter, err := argAddress(l, "minter")
	if err != nil {
		return err
	}

	amount, err := argUint(l, "mintAmount")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	if err != nil {
		return err
	}

	supplied, err := compound.UnderlyingAmount(amount, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	return w.updatePosition(ctx, market, minter, l, func(p *core.AccountMarketPosition) {
		p.TotalUnderlyingSupplied = p.TotalUnderlyingSupplied.Add(supplied)
	})
}

// Redeem(redeemer, redeemAmount, redeemTokens), the tokens leave with the Transfer to the market
func (w *Syncer) handleRedeem(ctx context.Context, l *core.Log) error {
	redeemer, err := argAddress(l, "redeemer")
	if err != nil {
		return err
	}

	amount, err := argUint(l, "redeemAmount")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	if err != nil {
		return err
	}

	redeemed, err := compound.UnderlyingAmount(amount, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	return w.updatePosition(ctx, market, redeemer, l, func(p *core.AccountMarketPosition) {
		p.TotalUnderlyingRedeemed = p.TotalUnderlyingRedeemed.Add(redeemed)
	})
}

// Borrow(borrower, borrowAmount, accountBorrows, totalBorrows)
func (w *Syncer) handleBorrow(ctx context.Context, l *core.Log) error {
	borrower, err := argAddress(l, "borrower")
	if err != nil {
		return err
	}

	amount, err := argUint(l, "borrowAmount")
	if err != nil {
		return err
	}

	accountBorrows, err := argUint(l, "accountBorrows")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	if err != nil {
		return err
	}

	borrowed, err := compound.UnderlyingAmount(amount, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	stored, err := compound.UnderlyingAmount(accountBorrows, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	if err := w.updatePosition(ctx, market, borrower, l, func(p *core.AccountMarketPosition) {
		p.StoredBorrowBalance = stored
		p.AccountBorrowIndex = market.BorrowIndex
		p.TotalUnderlyingBorrowed = p.TotalUnderlyingBorrowed.Add(borrowed)
	}); err != nil {
		return err
	}

	account, err := w.findAccount(ctx, borrower)
	if err != nil {
		return err
	}

	if account.HasBorrowed {
		return nil
	}

	account.HasBorrowed = true
	return w.accounts.Save(ctx, account)
}

// RepayBorrow(payer, borrower, repayAmount, accountBorrows, totalBorrows)
func (w *Syncer) handleRepayBorrow(ctx context.Context, l *core.Log) error {
	borrower, err := argAddress(l, "borrower")
	if err != nil {
		return err
	}

	amount, err := argUint(l, "repayAmount")
	if err != nil {
		return err
	}

	accountBorrows, err := argUint(l, "accountBorrows")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	if err != nil {
		return err
	}

	repaid, err := compound.UnderlyingAmount(amount, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	stored, err := compound.UnderlyingAmount(accountBorrows, market.UnderlyingDecimals)
	if err != nil {
		return err
	}

	return w.updatePosition(ctx, market, borrower, l, func(p *core.AccountMarketPosition) {
		p.StoredBorrowBalance = stored
		p.AccountBorrowIndex = market.BorrowIndex
		p.TotalUnderlyingRepaid = p.TotalUnderlyingRepaid.Add(repaid)
	})
}

// LiquidateBorrow(liquidator, borrower, repayAmount, cTokenCollateral, seizeTokens).
// Seized tokens move with a Transfer of the collateral market, the repayment with a RepayBorrow.
func (w *Syncer) handleLiquidateBorrow(ctx context.Context, l *core.Log) error {
	liquidator, err := argAddress(l, "liquidator")
	if err != nil {
		return err
	}

	borrower, err := argAddress(l, "borrower")
	if err != nil {
		return err
	}

	if _, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address)); err != nil {
		return err
	}

	if err := w.updateAccount(ctx, borrower, l, func(a *core.Account) {
		a.CountLiquidated++
	}); err != nil {
		return err
	}

	return w.updateAccount(ctx, liquidator, l, func(a *core.Account) {
		a.CountLiquidator++
	})
}

// Transfer(from, to, amount) moves sTokens, the market side of mints and redeems is skipped
func (w *Syncer) handleTransfer(ctx context.Context, l *core.Log) error {
	from, err := argAddress(l, "from")
	if err != nil {
		return err
	}

	to, err := argAddress(l, "to")
	if err != nil {
		return err
	}

	amount, err := argUint(l, "amount")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	if err != nil {
		return err
	}

	if from == to {
		return nil
	}

	tokens, err := compound.STokenAmount(amount)
	if err != nil {
		return err
	}

	if from != market.ID {
		if err := w.updatePosition(ctx, market, from, l, func(p *core.AccountMarketPosition) {
			p.Balance = p.Balance.Sub(tokens)
		}); err != nil {
			return err
		}
	}

	if to != market.ID {
		if err := w.updatePosition(ctx, market, to, l, func(p *core.AccountMarketPosition) {
			p.Balance = p.Balance.Add(tokens)
		}); err != nil {
			return err
		}
	}

	return nil
}

func (w *Syncer) handleAccrueInterest(ctx context.Context, l *core.Log) error {
	_, err := w.gate.EnsureUpdated(ctx, trigger(l, l.Address))
	return err
}

// NewReserveFactor(oldReserveFactorMantissa, newReserveFactorMantissa)
func (w *Syncer) handleNewReserveFactor(ctx context.Context, l *core.Log) error {
	raw, err := argUint(l, "newReserveFactorMantissa")
	if err != nil {
		return err
	}

	reserveFactor, err := compound.Mantissa(raw)
	if err != nil {
		return err
	}

	_, err = w.gate.Apply(ctx, trigger(l, l.Address), func(m *core.Market) error {
		m.ReserveFactor = reserveFactor
		return nil
	})
	return err
}

// NewMarketInterestRateModel(oldInterestRateModel, newInterestRateModel)
func (w *Syncer) handleNewInterestRateModel(ctx context.Context, l *core.Log) error {
	model, err := argAddress(l, "newInterestRateModel")
	if err != nil {
		return err
	}

	_, err = w.gate.Apply(ctx, trigger(l, l.Address), func(m *core.Market) error {
		m.InterestRateModelAddress = model
		return nil
	})
	return err
}
