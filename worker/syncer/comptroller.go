package syncer

import (
	"context"
	"fmt"

	"marketstate/core"
	"marketstate/internal/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// MarketListed(cToken)
func (w *Syncer) handleMarketListed(ctx context.Context, l *core.Log) error {
	address, err := argAddress(l, "cToken")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, address))
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("market %s listed at %d", market.Symbol, l.Block)
	return nil
}

func (w *Syncer) handleMarketEntered(ctx context.Context, l *core.Log) error {
	return w.setEnteredMarket(ctx, l, true)
}

func (w *Syncer) handleMarketExited(ctx context.Context, l *core.Log) error {
	return w.setEnteredMarket(ctx, l, false)
}

// MarketEntered(cToken, account) and MarketExited(cToken, account)
func (w *Syncer) setEnteredMarket(ctx context.Context, l *core.Log, entered bool) error {
	address, err := argAddress(l, "cToken")
	if err != nil {
		return err
	}

	account, err := argAddress(l, "account")
	if err != nil {
		return err
	}

	market, err := w.gate.EnsureUpdated(ctx, trigger(l, address))
	if err != nil {
		return err
	}

	return w.updatePosition(ctx, market, account, l, func(p *core.AccountMarketPosition) {
		p.EnteredMarket = entered
	})
}

// NewCollateralFactor(cToken, oldCollateralFactorMantissa, newCollateralFactorMantissa)
func (w *Syncer) handleNewCollateralFactor(ctx context.Context, l *core.Log) error {
	address, err := argAddress(l, "cToken")
	if err != nil {
		return err
	}

	raw, err := argUint(l, "newCollateralFactorMantissa")
	if err != nil {
		return err
	}

	collateralFactor, err := compound.Mantissa(raw)
	if err != nil {
		return err
	}

	_, err = w.gate.Apply(ctx, trigger(l, address), func(m *core.Market) error {
		m.CollateralFactor = collateralFactor
		return nil
	})
	return err
}

func (w *Syncer) updateComptroller(ctx context.Context, fn func(c *core.Comptroller)) error {
	comptroller, err := w.comptrollers.Find(ctx)
	if err != nil {
		return err
	}

	fn(comptroller)
	return w.comptrollers.Save(ctx, comptroller)
}

// NewPriceOracle(oldPriceOracle, newPriceOracle)
func (w *Syncer) handleNewPriceOracle(ctx context.Context, l *core.Log) error {
	oracle, err := argAddress(l, "newPriceOracle")
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("price oracle set to %s at %d", oracle, l.Block)
	return w.updateComptroller(ctx, func(c *core.Comptroller) {
		c.PriceOracle = oracle
	})
}

func (w *Syncer) mantissaUpdate(ctx context.Context, l *core.Log, arg string, fn func(c *core.Comptroller, v decimal.Decimal)) error {
	raw, err := argUint(l, arg)
	if err != nil {
		return err
	}

	v, err := compound.Mantissa(raw)
	if err != nil {
		return err
	}

	return w.updateComptroller(ctx, func(c *core.Comptroller) {
		fn(c, v)
	})
}

// NewCloseFactor(oldCloseFactorMantissa, newCloseFactorMantissa)
func (w *Syncer) handleNewCloseFactor(ctx context.Context, l *core.Log) error {
	return w.mantissaUpdate(ctx, l, "newCloseFactorMantissa", func(c *core.Comptroller, v decimal.Decimal) {
		c.CloseFactor = v
	})
}

// NewLiquidationIncentive(oldLiquidationIncentiveMantissa, newLiquidationIncentiveMantissa)
func (w *Syncer) handleNewLiquidationIncentive(ctx context.Context, l *core.Log) error {
	return w.mantissaUpdate(ctx, l, "newLiquidationIncentiveMantissa", func(c *core.Comptroller, v decimal.Decimal) {
		c.LiquidationIncentive = v
	})
}

// NewMaxAssets(oldMaxAssets, newMaxAssets)
func (w *Syncer) handleNewMaxAssets(ctx context.Context, l *core.Log) error {
	raw, err := argUint(l, "newMaxAssets")
	if err != nil {
		return err
	}

	if !raw.IsInt64() {
		return fmt.Errorf("%s: newMaxAssets out of range: %s", l.Event, raw)
	}

	return w.updateComptroller(ctx, func(c *core.Comptroller) {
		c.MaxAssets = raw.Int64()
	})
}
