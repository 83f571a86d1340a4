package views

import (
	"marketstate/core"
	"marketstate/internal/compound"

	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	*core.Market
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
}

// MarketView market with derived fields
func MarketView(m *core.Market) *Market {
	return &Market{
		Market:          m,
		UtilizationRate: compound.UtilizationRate(m.Cash, m.TotalBorrows, m.Reserves),
	}
}

// MarketViews views of markets
func MarketViews(markets []*core.Market) []*Market {
	views := make([]*Market, 0, len(markets))
	for _, m := range markets {
		views = append(views, MarketView(m))
	}

	return views
}

// Account account view
type Account struct {
	*core.Account
	Positions []*core.AccountMarketPosition `json:"positions"`
}
