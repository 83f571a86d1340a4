package market

import (
	"context"
	"fmt"
	"math/big"

	"marketstate/core"
	"marketstate/internal/compound"
	"marketstate/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	nativeDecimals = 18
	nativeName     = "Ether"
	nativeSymbol   = "ETH"
)

type service struct {
	protocol *core.Protocol
	chain    core.IChainReader
}

// New new market service
func New(
	protocol *core.Protocol,
	chain core.IChainReader,
) core.IMarketService {
	return &service{
		protocol: protocol,
		chain:    chain,
	}
}

// Create reads the metadata of a market that is referenced for the first time.
//
// The native market has no underlying token contract, it gets a synthetic zero address.
func (s *service) Create(ctx context.Context, address string, block int64) (*core.Market, error) {
	market := &core.Market{
		ID:                       address,
		InterestRateModelAddress: core.ZeroAddress,
	}

	if s.protocol.IsNativeMarket(address) {
		market.UnderlyingAddress = core.ZeroAddress
		market.UnderlyingDecimals = nativeDecimals
		market.UnderlyingName = nativeName
		market.UnderlyingSymbol = nativeSymbol
		market.UnderlyingPrice = decimal.New(1, 0)
	} else {
		if err := s.readUnderlying(ctx, market, block); err != nil {
			return nil, err
		}
	}

	if s.protocol.TrackUSD && s.protocol.IsStableMarket(address) {
		market.UnderlyingPriceUSD = decimal.New(1, 0)
	}

	symbol, err := s.chain.CallString(ctx, address, core.MethodSymbol, block)
	if err != nil {
		return nil, fmt.Errorf("read %s symbol: %w", address, err)
	}
	market.Symbol = symbol

	name, err := s.chain.CallString(ctx, address, core.MethodName, block)
	if err != nil {
		return nil, fmt.Errorf("read %s name: %w", address, err)
	}
	market.Name = name

	irm, err := s.optionalAddress(ctx, address, core.MethodInterestRateModel, block)
	if err != nil {
		return nil, err
	}
	market.InterestRateModelAddress = irm

	reserveFactor, err := s.optionalMantissa(ctx, address, core.MethodReserveFactorMantissa, block)
	if err != nil {
		return nil, err
	}
	market.ReserveFactor = reserveFactor

	return market, nil
}

func (s *service) readUnderlying(ctx context.Context, market *core.Market, block int64) error {
	underlying, err := s.chain.CallAddress(ctx, market.ID, core.MethodUnderlying, block)
	if err != nil {
		return fmt.Errorf("read %s underlying: %w", market.ID, err)
	}
	market.UnderlyingAddress = underlying

	decimals, err := s.chain.CallUint(ctx, underlying, core.MethodDecimals, block)
	if err != nil {
		return fmt.Errorf("read %s decimals: %w", underlying, err)
	}
	if !decimals.IsInt64() || decimals.Int64() > compound.MaxUnderlyingDecimals {
		return fmt.Errorf("unsupported decimals %s of %s", decimals, underlying)
	}
	market.UnderlyingDecimals = int32(decimals.Int64())

	if o, ok := s.protocol.MetadataOverride(underlying); ok {
		market.UnderlyingName = o.Name
		market.UnderlyingSymbol = o.Symbol
		return nil
	}

	if market.UnderlyingName, err = s.chain.CallString(ctx, underlying, core.MethodName, block); err != nil {
		return fmt.Errorf("read %s name: %w", underlying, err)
	}

	if market.UnderlyingSymbol, err = s.chain.CallString(ctx, underlying, core.MethodSymbol, block); err != nil {
		return fmt.Errorf("read %s symbol: %w", underlying, err)
	}

	return nil
}

// state every chain derived field of a market at one block
type state struct {
	interestAccrualBlock int64
	totalSupply          decimal.Decimal
	exchangeRate         decimal.Decimal
	borrowIndex          decimal.Decimal
	reserves             decimal.Decimal
	totalBorrows         decimal.Decimal
	cash                 decimal.Decimal
	borrowRatePerBlock   decimal.Decimal
	borrowRate           decimal.Decimal
	supplyRatePerBlock   decimal.Decimal
	supplyRate           decimal.Decimal
	reserveFactor        decimal.Decimal
	interestRateModel    string
}

// Refresh recomputes the scaled fields of market at block.
//
// Every read happens before market is touched, a failed required read leaves it unchanged.
func (s *service) Refresh(ctx context.Context, market *core.Market, block int64, price *core.MarketPrice) error {
	st, err := s.readState(ctx, market, block)
	if err != nil {
		return err
	}

	market.InterestAccrualBlock = st.interestAccrualBlock
	market.TotalSupply = st.totalSupply
	market.ExchangeRate = st.exchangeRate
	market.BorrowIndex = st.borrowIndex
	market.Reserves = st.reserves
	market.TotalBorrows = st.totalBorrows
	market.Cash = st.cash
	market.TotalDeposits = compound.TotalDeposits(st.cash, st.totalBorrows, st.reserves)
	market.BorrowRatePerBlock = st.borrowRatePerBlock
	market.BorrowRate = st.borrowRate
	market.SupplyRatePerBlock = st.supplyRatePerBlock
	market.SupplyRate = st.supplyRate
	market.ReserveFactor = st.reserveFactor
	market.InterestRateModelAddress = st.interestRateModel

	if price != nil {
		market.UnderlyingPrice = price.Price
		if s.protocol.TrackUSD {
			market.UnderlyingPriceUSD = price.PriceUSD
		}
	}

	return nil
}

func (s *service) readState(ctx context.Context, market *core.Market, block int64) (*state, error) {
	var (
		st       state
		decimals = market.UnderlyingDecimals
	)

	accrual, err := s.required(ctx, market.ID, core.MethodAccrualBlockNumber, block)
	if err != nil {
		return nil, err
	}
	if !accrual.IsInt64() {
		return nil, fmt.Errorf("%s.%s at %d out of range: %s", market.ID, core.MethodAccrualBlockNumber, block, accrual)
	}
	st.interestAccrualBlock = accrual.Int64()

	scaled := []struct {
		method string
		dst    *decimal.Decimal
		scale  func(*big.Int) (decimal.Decimal, error)
	}{
		{core.MethodTotalSupply, &st.totalSupply, compound.TotalSupply},
		{core.MethodExchangeRateStored, &st.exchangeRate, func(v *big.Int) (decimal.Decimal, error) {
			return compound.ExchangeRate(v, decimals)
		}},
		{core.MethodBorrowIndex, &st.borrowIndex, compound.BorrowIndex},
		{core.MethodTotalReserves, &st.reserves, s.underlying(decimals)},
		{core.MethodTotalBorrows, &st.totalBorrows, s.underlying(decimals)},
		{core.MethodGetCash, &st.cash, s.underlying(decimals)},
	}

	for _, f := range scaled {
		raw, err := s.required(ctx, market.ID, f.method, block)
		if err != nil {
			return nil, err
		}

		if *f.dst, err = f.scale(raw); err != nil {
			return nil, fmt.Errorf("scale %s.%s: %w", market.ID, f.method, err)
		}
	}

	borrowRate, err := s.required(ctx, market.ID, core.MethodBorrowRatePerBlock, block)
	if err != nil {
		return nil, err
	}
	if st.borrowRatePerBlock, st.borrowRate, err = rates(borrowRate); err != nil {
		return nil, err
	}

	// reverts on the first call to some markets, treated as zero
	supplyRate, err := s.optionalUint(ctx, market.ID, core.MethodSupplyRatePerBlock, block)
	if err != nil {
		return nil, err
	}
	if st.supplyRatePerBlock, st.supplyRate, err = rates(supplyRate); err != nil {
		return nil, err
	}

	if st.reserveFactor, err = s.optionalMantissa(ctx, market.ID, core.MethodReserveFactorMantissa, block); err != nil {
		return nil, err
	}

	if st.interestRateModel, err = s.optionalAddress(ctx, market.ID, core.MethodInterestRateModel, block); err != nil {
		return nil, err
	}

	return &st, nil
}

func (s *service) underlying(decimals int32) func(*big.Int) (decimal.Decimal, error) {
	return func(v *big.Int) (decimal.Decimal, error) {
		return compound.UnderlyingAmount(v, decimals)
	}
}

func rates(raw *big.Int) (perBlock, annual decimal.Decimal, err error) {
	if perBlock, err = compound.RatePerBlock(raw); err != nil {
		return
	}

	annual, err = compound.AnnualRate(raw)
	return
}

func (s *service) required(ctx context.Context, contract, method string, block int64) (*big.Int, error) {
	v, err := s.chain.CallUint(ctx, contract, method, block)
	if err != nil {
		return nil, fmt.Errorf("read %s.%s at %d: %w", contract, method, block, err)
	}

	return v, nil
}

// optionalUint best effort read, a revert yields zero.
// Other failures (transport, cancellation) are still returned.
func (s *service) optionalUint(ctx context.Context, contract, method string, block int64) (*big.Int, error) {
	v, err := s.chain.CallUint(ctx, contract, method, block)
	if err == nil {
		return v, nil
	}

	if !core.IsReverted(err) {
		return nil, fmt.Errorf("read %s.%s at %d: %w", contract, method, block, err)
	}

	s.optionalFailed(ctx, contract, method, block, err)
	return new(big.Int), nil
}

func (s *service) optionalMantissa(ctx context.Context, contract, method string, block int64) (decimal.Decimal, error) {
	v, err := s.optionalUint(ctx, contract, method, block)
	if err != nil {
		return decimal.Zero, err
	}

	return compound.Mantissa(v)
}

func (s *service) optionalAddress(ctx context.Context, contract, method string, block int64) (string, error) {
	v, err := s.chain.CallAddress(ctx, contract, method, block)
	if err == nil {
		return v, nil
	}

	if !core.IsReverted(err) {
		return "", fmt.Errorf("read %s.%s at %d: %w", contract, method, block, err)
	}

	s.optionalFailed(ctx, contract, method, block, err)
	return core.ZeroAddress, nil
}

func (s *service) optionalFailed(ctx context.Context, contract, method string, block int64, err error) {
	metrics.OptionalReadFailures.WithLabelValues(method).Inc()
	logger.FromContext(ctx).WithError(err).
		WithField("market", contract).
		Warnf("***CALL FAILED*** %s() reverted at %d, using default", method, block)
}
