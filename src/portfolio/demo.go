package portfolio

import (
	"context"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"

	"github.com/shopspring/decimal"
)

const DemoSetName = "demo"

// DemoPositions is the synthetic portfolio loaded by SeedDemo.
func DemoPositions() []model.RawPosition {
	return []model.RawPosition{
		{Ticker: "AAPL", FullName: "Apple Inc.", Broker: "ibkr", Account: "Taxable", Quantity: decimal.NewFromInt(25), CostPerUnit: decimal.RequireFromString("142.30"), Currency: "USD", TransactionDate: "2023-03-14"},
		{Ticker: "MSFT", FullName: "Microsoft Corporation", Broker: "ibkr", Account: "Taxable", Quantity: decimal.NewFromInt(12), CostPerUnit: decimal.RequireFromString("281.75"), Currency: "USD", TransactionDate: "2023-05-02"},
		{Ticker: "VOO", FullName: "Vanguard S&P 500 ETF", Broker: "vanguard", Account: "IRA", Quantity: decimal.NewFromInt(40), CostPerUnit: decimal.RequireFromString("365.10"), Currency: "USD", TransactionDate: "2022-11-21"},
		{Ticker: "7203.T", FullName: "Toyota Motor Corporation", Broker: "sbi", Account: "NISA", Quantity: decimal.NewFromInt(300), CostPerUnit: decimal.RequireFromString("2150"), Currency: "JPY", TransactionDate: "2024-01-15"},
		{Ticker: "BTC", FullName: "Bitcoin", Broker: "binance", Account: "Spot", Quantity: decimal.RequireFromString("0.15"), CostPerUnit: decimal.RequireFromString("27400"), Currency: "USD", TransactionDate: "2023-09-08"},
	}
}

// SeedDemo creates the demo set when it is missing and activates it when no
// other set is active. It reports whether a set was created.
func (s *Service) SeedDemo(ctx context.Context) (*model.PositionSet, bool, error) {
	existing, err := s.store.FindByName(ctx, DemoSetName)
	if err != nil {
		return nil, false, wrapStore("find demo position set", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	set := &model.PositionSet{
		Name:        DemoSetName,
		DisplayName: "Demo Portfolio",
		Description: "Sample holdings for trying the app. Replace with your own positions.",
		InfoType:    model.InfoTypeWarning,
	}
	if err := s.store.Create(ctx, set, DemoPositions()); err != nil {
		return nil, false, wrapStore("create demo position set", err)
	}
	s.publish(events.TypePositionSetImported, set.ID)

	active, err := s.store.GetActive(ctx)
	if err != nil {
		return nil, true, wrapStore("get active position set", err)
	}
	if active == nil {
		if err := s.store.Activate(ctx, set.ID); err != nil {
			return nil, true, wrapStore("activate demo position set", err)
		}
		set.IsActive = true
		s.publish(events.TypePositionSetActivated, set.ID)
	}

	s.log.WithField("position_set_id", set.ID).Info("demo position set seeded")
	return set, true, nil
}
