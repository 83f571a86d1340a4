package compound

import (
	"math/big"

	"marketstate/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// MantissaFactor decimals of the protocol fixed point numbers
	MantissaFactor = 18
	// STokenDecimals decimals of every sToken
	STokenDecimals = 8
	// MaxPricision precision of rates and indices
	MaxPricision int32 = MantissaFactor
	// MaxUnderlyingDecimals largest token decimals the price oracle scale 10^(36 - decimals) allows
	MaxUnderlyingDecimals = 2 * MantissaFactor
)

var (
	// BlocksPerYear blocks per year, 15 seconds per block
	BlocksPerYear = decimal.NewFromInt(2102400)
	// MantissaFactorBD 10^18
	MantissaFactorBD = number.ExponentToDecimal(MantissaFactor)
	// STokenDecimalsBD 10^8
	STokenDecimalsBD = number.ExponentToDecimal(STokenDecimals)
)

// TotalSupply sToken supply, raw / 10^8
func TotalSupply(raw *big.Int) (decimal.Decimal, error) {
	return STokenAmount(raw)
}

// STokenAmount raw sToken units / 10^8
func STokenAmount(raw *big.Int) (decimal.Decimal, error) {
	return number.Div(number.FromBig(raw), STokenDecimalsBD)
}

// ExchangeRate underlying per sToken.
//
// exchangeRateStored is scaled by 10^(18 - 8 + underlyingDecimals), so divide by the
// underlying decimals, multiply by the sToken decimals and divide by the mantissa.
func ExchangeRate(raw *big.Int, underlyingDecimals int32) (decimal.Decimal, error) {
	v, err := number.Div(number.FromBig(raw), number.ExponentToDecimal(int(underlyingDecimals)))
	if err != nil {
		return decimal.Zero, err
	}

	v, err = number.Div(v.Mul(STokenDecimalsBD), MantissaFactorBD)
	if err != nil {
		return decimal.Zero, err
	}

	return number.Truncate(v, MaxPricision), nil
}

// Mantissa raw / 10^18 truncated to 18 places, used for indices and factors
func Mantissa(raw *big.Int) (decimal.Decimal, error) {
	v, err := number.Div(number.FromBig(raw), MantissaFactorBD)
	if err != nil {
		return decimal.Zero, err
	}

	return number.Truncate(v, MaxPricision), nil
}

// BorrowIndex raw / 10^18
func BorrowIndex(raw *big.Int) (decimal.Decimal, error) {
	return Mantissa(raw)
}

// UnderlyingAmount raw / 10^decimals truncated to decimals places
func UnderlyingAmount(raw *big.Int, decimals int32) (decimal.Decimal, error) {
	v, err := number.Div(number.FromBig(raw), number.ExponentToDecimal(int(decimals)))
	if err != nil {
		return decimal.Zero, err
	}

	return number.Truncate(v, decimals), nil
}

// RatePerBlock raw per block rate / 10^18
func RatePerBlock(raw *big.Int) (decimal.Decimal, error) {
	return Mantissa(raw)
}

// AnnualRate raw per block rate * blocks per year / 10^18
func AnnualRate(raw *big.Int) (decimal.Decimal, error) {
	v, err := number.Div(number.FromBig(raw).Mul(BlocksPerYear), MantissaFactorBD)
	if err != nil {
		return decimal.Zero, err
	}

	return number.Truncate(v, MaxPricision), nil
}

// TotalDeposits total_cash + total_borrows - reserves
func TotalDeposits(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	return cash.Add(borrows).Sub(reserves)
}

// UtilizationRate utilization rate
// utilization_rate = market.total_borrows/(market.total_cash + market.borrows - market.reserves)
func UtilizationRate(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	total := TotalDeposits(cash, borrows, reserves)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	v, _ := number.Div(borrows, total)
	return number.Truncate(v, MaxPricision)
}
