package core

import (
	"errors"
	"strconv"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100001

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrAccountNotFound no account
	ErrAccountNotFound ErrorCode = 100101
	// ErrInvalidAddress invalid address
	ErrInvalidAddress ErrorCode = 100102
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

var (
	// ErrCallReverted a contract call reverted or returned no data
	ErrCallReverted = errors.New("call reverted")
	// ErrDivisionByZero divisor is zero, an upstream value (price, scale) is broken
	ErrDivisionByZero = errors.New("division by zero")
)

// IsReverted reports whether err is a reverted contract call
func IsReverted(err error) bool {
	return errors.Is(err, ErrCallReverted)
}
