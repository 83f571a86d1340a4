package evm

// protocolABI methods read by the indexer and events of sTokens and the comptroller
const protocolABI = `[
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"underlying","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"exchangeRateStored","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"borrowIndex","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalReserves","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalBorrows","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCash","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"borrowRatePerBlock","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"supplyRatePerBlock","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"accrualBlockNumber","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"interestRateModel","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"reserveFactorMantissa","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getPrice","stateMutability":"view","inputs":[{"name":"asset","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getUnderlyingPrice","stateMutability":"view","inputs":[{"name":"cToken","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Mint","anonymous":false,"inputs":[{"name":"minter","type":"address","indexed":false},{"name":"mintAmount","type":"uint256","indexed":false},{"name":"mintTokens","type":"uint256","indexed":false}]},
	{"type":"event","name":"Redeem","anonymous":false,"inputs":[{"name":"redeemer","type":"address","indexed":false},{"name":"redeemAmount","type":"uint256","indexed":false},{"name":"redeemTokens","type":"uint256","indexed":false}]},
	{"type":"event","name":"Borrow","anonymous":false,"inputs":[{"name":"borrower","type":"address","indexed":false},{"name":"borrowAmount","type":"uint256","indexed":false},{"name":"accountBorrows","type":"uint256","indexed":false},{"name":"totalBorrows","type":"uint256","indexed":false}]},
	{"type":"event","name":"RepayBorrow","anonymous":false,"inputs":[{"name":"payer","type":"address","indexed":false},{"name":"borrower","type":"address","indexed":false},{"name":"repayAmount","type":"uint256","indexed":false},{"name":"accountBorrows","type":"uint256","indexed":false},{"name":"totalBorrows","type":"uint256","indexed":false}]},
	{"type":"event","name":"LiquidateBorrow","anonymous":false,"inputs":[{"name":"liquidator","type":"address","indexed":false},{"name":"borrower","type":"address","indexed":false},{"name":"repayAmount","type":"uint256","indexed":false},{"name":"cTokenCollateral","type":"address","indexed":false},{"name":"seizeTokens","type":"uint256","indexed":false}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"AccrueInterest","anonymous":false,"inputs":[{"name":"interestAccumulated","type":"uint256","indexed":false},{"name":"borrowIndex","type":"uint256","indexed":false},{"name":"totalBorrows","type":"uint256","indexed":false}]},
	{"type":"event","name":"AccrueInterest","anonymous":false,"inputs":[{"name":"cashPrior","type":"uint256","indexed":false},{"name":"interestAccumulated","type":"uint256","indexed":false},{"name":"borrowIndex","type":"uint256","indexed":false},{"name":"totalBorrows","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewReserveFactor","anonymous":false,"inputs":[{"name":"oldReserveFactorMantissa","type":"uint256","indexed":false},{"name":"newReserveFactorMantissa","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewMarketInterestRateModel","anonymous":false,"inputs":[{"name":"oldInterestRateModel","type":"address","indexed":false},{"name":"newInterestRateModel","type":"address","indexed":false}]},
	{"type":"event","name":"MarketListed","anonymous":false,"inputs":[{"name":"cToken","type":"address","indexed":false}]},
	{"type":"event","name":"MarketEntered","anonymous":false,"inputs":[{"name":"cToken","type":"address","indexed":false},{"name":"account","type":"address","indexed":false}]},
	{"type":"event","name":"MarketExited","anonymous":false,"inputs":[{"name":"cToken","type":"address","indexed":false},{"name":"account","type":"address","indexed":false}]},
	{"type":"event","name":"NewCloseFactor","anonymous":false,"inputs":[{"name":"oldCloseFactorMantissa","type":"uint256","indexed":false},{"name":"newCloseFactorMantissa","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewCollateralFactor","anonymous":false,"inputs":[{"name":"cToken","type":"address","indexed":false},{"name":"oldCollateralFactorMantissa","type":"uint256","indexed":false},{"name":"newCollateralFactorMantissa","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewLiquidationIncentive","anonymous":false,"inputs":[{"name":"oldLiquidationIncentiveMantissa","type":"uint256","indexed":false},{"name":"newLiquidationIncentiveMantissa","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewMaxAssets","anonymous":false,"inputs":[{"name":"oldMaxAssets","type":"uint256","indexed":false},{"name":"newMaxAssets","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewPriceOracle","anonymous":false,"inputs":[{"name":"oldPriceOracle","type":"address","indexed":false},{"name":"newPriceOracle","type":"address","indexed":false}]}
]`
