package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/utils"
)

const (
	ReasonNoHistoricalData = "No historical data found"
	ReasonUpToDate         = "Historical data is up to date"
)

// HistoricalDataStatus tells the client whether it should refresh prices.
type HistoricalDataStatus struct {
	NeedsRefresh bool    `json:"needsRefresh"`
	LastDataDate *string `json:"lastDataDate"`
	Reason       string  `json:"reason"`
}

type symbolSource interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
}

type latestDateSource interface {
	LatestDate(ctx context.Context, symbols []string) (*time.Time, error)
}

// Evaluator decides historical data freshness. Instruments of the active set
// are considered; with no active set the whole price table is.
type Evaluator struct {
	symbols  symbolSource
	prices   latestDateSource
	maxStale int
	now      func() time.Time
}

func NewEvaluator(symbols symbolSource, prices latestDateSource, config Config) *Evaluator {
	return &Evaluator{
		symbols:  symbols,
		prices:   prices,
		maxStale: config.MaxStaleTradingDays,
		now:      time.Now,
	}
}

// DefaultEvaluator reads from the main database.
func DefaultEvaluator() *Evaluator {
	return NewEvaluator(
		repository.NewPositionSetRepository(),
		repository.NewHistoricalPriceRepository(),
		GetConfig(),
	)
}

// WithClock replaces the time source, for tests.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Status is read-only; calling it twice on unchanged data yields equal results.
func (e *Evaluator) Status(ctx context.Context) (HistoricalDataStatus, error) {
	symbols, err := e.symbols.ActiveSymbols(ctx)
	if err != nil {
		return HistoricalDataStatus{}, wrapStore("list active symbols", err)
	}

	latest, err := e.prices.LatestDate(ctx, symbols)
	if err != nil {
		return HistoricalDataStatus{}, wrapStore("latest historical date", err)
	}

	if latest == nil {
		return HistoricalDataStatus{
			NeedsRefresh: true,
			Reason:       ReasonNoHistoricalData,
		}, nil
	}

	last := utils.DateOnly(latest.UTC())
	formatted := utils.FormatDate(last)
	expected := utils.TradingDaysBefore(e.now().UTC(), e.maxStale)

	if last.Before(expected) {
		return HistoricalDataStatus{
			NeedsRefresh: true,
			LastDataDate: &formatted,
			Reason:       fmt.Sprintf("Historical data is outdated (last: %s)", formatted),
		}, nil
	}

	return HistoricalDataStatus{
		NeedsRefresh: false,
		LastDataDate: &formatted,
		Reason:       ReasonUpToDate,
	}, nil
}
