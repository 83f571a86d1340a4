package number

import (
	"fmt"
	"math/big"

	"marketstate/core"

	"github.com/shopspring/decimal"
)

// DivisionPrecision fractional digits kept by Div before truncation
const DivisionPrecision int32 = 64

var ten = decimal.NewFromInt(10)

// Decimal parse v, zero when v is not a number
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// FromBig exact decimal of an integer, zero for nil
func FromBig(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v, 0)
}

// ExponentToDecimal 10^n, built by repeated multiplication
func ExponentToDecimal(n int) decimal.Decimal {
	d := decimal.New(1, 0)
	for i := 0; i < n; i++ {
		d = d.Mul(ten)
	}

	return d
}

// Div a / b keeping DivisionPrecision fractional digits, truncated toward zero.
// A zero divisor is reported as core.ErrDivisionByZero.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("%s / 0: %w", a.String(), core.ErrDivisionByZero)
	}

	q, _ := a.QuoRem(b, DivisionPrecision)
	return q, nil
}

// Truncate d to places fractional digits toward zero
func Truncate(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Truncate(places)
}
