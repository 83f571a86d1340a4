package compound

import (
	"math/big"

	"marketstate/pkg/number"

	"github.com/shopspring/decimal"
)

// LegacyOraclePrice getPrice(token) of the first oracle, scaled by the mantissa only
func LegacyOraclePrice(raw *big.Int) (decimal.Decimal, error) {
	return number.Div(number.FromBig(raw), MantissaFactorBD)
}

// UnderlyingPriceFactor 10^((18 - underlyingDecimals) + 18).
//
// getUnderlyingPrice(sToken) does not factor in the token decimals, USDC is 10^30.
func UnderlyingPriceFactor(underlyingDecimals int32) decimal.Decimal {
	return number.ExponentToDecimal(MantissaFactor - int(underlyingDecimals) + MantissaFactor)
}

// VersionedOraclePrice getUnderlyingPrice(sToken) / 10^(36 - underlyingDecimals)
func VersionedOraclePrice(raw *big.Int, underlyingDecimals int32) (decimal.Decimal, error) {
	return number.Div(number.FromBig(raw), UnderlyingPriceFactor(underlyingDecimals))
}
