package core

import (
	"context"
	"math/big"
)

// contract methods read by the indexer
const (
	MethodSymbol                = "symbol"
	MethodName                  = "name"
	MethodDecimals              = "decimals"
	MethodUnderlying            = "underlying"
	MethodTotalSupply           = "totalSupply"
	MethodExchangeRateStored    = "exchangeRateStored"
	MethodBorrowIndex           = "borrowIndex"
	MethodTotalReserves         = "totalReserves"
	MethodTotalBorrows          = "totalBorrows"
	MethodGetCash               = "getCash"
	MethodBorrowRatePerBlock    = "borrowRatePerBlock"
	MethodSupplyRatePerBlock    = "supplyRatePerBlock"
	MethodAccrualBlockNumber    = "accrualBlockNumber"
	MethodInterestRateModel     = "interestRateModel"
	MethodReserveFactorMantissa = "reserveFactorMantissa"
	// legacy oracle, takes the underlying token address
	MethodGetPrice = "getPrice"
	// versioned oracle, takes the market address
	MethodGetUnderlyingPrice = "getUnderlyingPrice"
)

// ZeroAddress the all zero address
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// IChainReader read-only contract calls evaluated at a block height.
//
// A call that reverts (or returns no data) yields an error wrapping ErrCallReverted,
// any other failure (transport, decoding) is returned as is.
// block <= 0 means the latest block.
type IChainReader interface {
	CallUint(ctx context.Context, contract, method string, block int64, args ...string) (*big.Int, error)
	CallAddress(ctx context.Context, contract, method string, block int64, args ...string) (string, error)
	CallString(ctx context.Context, contract, method string, block int64, args ...string) (string, error)
}

// Log a decoded contract event
type Log struct {
	Address   string
	Event     string
	Block     int64
	Timestamp int64
	TxHash    string
	TxIndex   uint
	LogIndex  uint
	// decoded event arguments; addresses as lower case hex, integers as *big.Int
	Args map[string]interface{}
}

// ILogSource ordered contract event source
type ILogSource interface {
	Head(ctx context.Context) (int64, error)
	// Logs returns the decoded logs of contracts in [from, to], ordered by block, tx and log index
	Logs(ctx context.Context, contracts []string, from, to int64) ([]*Log, error)
	BlockTimestamp(ctx context.Context, block int64) (int64, error)
}

// ICheckpointStore last fully processed block
type ICheckpointStore interface {
	Checkpoint(ctx context.Context) (int64, error)
	SaveCheckpoint(ctx context.Context, block int64) error
}

// decoded event names
const (
	EventMint                       = "Mint"
	EventRedeem                     = "Redeem"
	EventBorrow                     = "Borrow"
	EventRepayBorrow                = "RepayBorrow"
	EventLiquidateBorrow            = "LiquidateBorrow"
	EventTransfer                   = "Transfer"
	EventAccrueInterest             = "AccrueInterest"
	EventNewReserveFactor           = "NewReserveFactor"
	EventNewMarketInterestRateModel = "NewMarketInterestRateModel"
	EventMarketListed               = "MarketListed"
	EventMarketEntered              = "MarketEntered"
	EventMarketExited               = "MarketExited"
	EventNewCloseFactor             = "NewCloseFactor"
	EventNewCollateralFactor        = "NewCollateralFactor"
	EventNewLiquidationIncentive    = "NewLiquidationIncentive"
	EventNewMaxAssets               = "NewMaxAssets"
	EventNewPriceOracle             = "NewPriceOracle"
)
