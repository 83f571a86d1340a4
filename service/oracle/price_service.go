package oracle

import (
	"context"
	"fmt"
	"strings"

	"marketstate/core"
	"marketstate/internal/compound"
	"marketstate/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// PriceService resolves market prices from the price oracles
type PriceService struct {
	protocol *core.Protocol
	chain    core.IChainReader
}

// New new oracle price service
func New(protocol *core.Protocol, chain core.IChainReader) core.IPriceResolver {
	return &PriceService{
		protocol: protocol,
		chain:    chain,
	}
}

// Resolve price of market at block in the native unit and, when tracked, in the stable unit.
//
// The native market is always worth 1 and never queried; the stable market is always worth 1 usd.
func (s *PriceService) Resolve(ctx context.Context, comptroller *core.Comptroller, market *core.Market, block int64) (*core.MarketPrice, error) {
	log := logger.FromContext(ctx).WithField("market", market.ID)

	price := &core.MarketPrice{
		Price:    decimal.New(1, 0),
		PriceUSD: decimal.Zero,
	}

	if !s.protocol.IsNativeMarket(market.ID) {
		p, err := s.tokenPrice(ctx, comptroller, market.ID, market.UnderlyingAddress, market.UnderlyingDecimals, block)
		if err != nil {
			return nil, err
		}

		price.Price = p
	}

	if s.protocol.TrackUSD {
		if s.protocol.IsStableMarket(market.ID) {
			price.PriceUSD = decimal.New(1, 0)
		} else {
			stable, err := s.stablePrice(ctx, comptroller, block)
			if err != nil {
				return nil, err
			}

			usd, err := number.Div(price.Price, stable)
			if err != nil {
				return nil, fmt.Errorf("stable price of %s at %d: %w", s.protocol.StableMarket, block, err)
			}

			price.PriceUSD = usd
		}
	}

	price.Price = price.Price.Truncate(market.UnderlyingDecimals)
	price.PriceUSD = price.PriceUSD.Truncate(market.UnderlyingDecimals)

	log.Debugf("price at %d: %s eth, %s usd", block, price.Price, price.PriceUSD)
	return price, nil
}

// tokenPrice price in the native unit of one market through the oracle in charge at block
func (s *PriceService) tokenPrice(ctx context.Context, comptroller *core.Comptroller, marketID, underlying string, decimals int32, block int64) (decimal.Decimal, error) {
	if s.useLegacyOracle(block) {
		raw, err := s.chain.CallUint(ctx, s.protocol.LegacyOracle, core.MethodGetPrice, block, underlying)
		if err != nil {
			return decimal.Zero, fmt.Errorf("legacy oracle getPrice(%s) at %d: %w", underlying, block, err)
		}

		return compound.LegacyOraclePrice(raw)
	}

	oracle := comptroller.PriceOracle
	if oracle == "" || strings.EqualFold(oracle, core.ZeroAddress) {
		return decimal.Zero, fmt.Errorf("comptroller has no price oracle at %d", block)
	}

	raw, err := s.chain.CallUint(ctx, oracle, core.MethodGetUnderlyingPrice, block, marketID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle %s getUnderlyingPrice(%s) at %d: %w", oracle, marketID, block, err)
	}

	return compound.VersionedOraclePrice(raw, decimals)
}

// stablePrice price of the stable reference market in the native unit
func (s *PriceService) stablePrice(ctx context.Context, comptroller *core.Comptroller, block int64) (decimal.Decimal, error) {
	return s.tokenPrice(ctx, comptroller, s.protocol.StableMarket, s.protocol.StableUnderlying, s.protocol.StableDecimals, block)
}

func (s *PriceService) useLegacyOracle(block int64) bool {
	return block < s.protocol.LegacyOracleCutoff
}
