package prices

import (
	"context"
	"sync"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/utils"

	logger "github.com/sirupsen/logrus"
)

type symbolLister interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
}

type priceStore interface {
	LatestDateForSymbol(ctx context.Context, symbol string) (*time.Time, error)
	Upsert(ctx context.Context, rows []model.HistoricalPrice) error
}

type Publisher interface {
	Publish(e events.Event)
}

// Result summarizes one refresh run.
type Result struct {
	Updated int      `json:"updated"`
	Symbols int      `json:"symbols"`
	Skipped []string `json:"skipped,omitempty"`
	Failed  []string `json:"failed,omitempty"`
}

// Refresher pulls missing daily closes for the active set's instruments.
// Runs are serialized.
type Refresher struct {
	mu       sync.Mutex
	symbols  symbolLister
	store    priceStore
	sources  []Source
	lookback int
	events   Publisher
	now      func() time.Time
	log      *logger.Entry
}

func NewRefresher(symbols symbolLister, store priceStore, sources []Source, lookbackDays int, publisher Publisher) *Refresher {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	return &Refresher{
		symbols:  symbols,
		store:    store,
		sources:  sources,
		lookback: lookbackDays,
		events:   publisher,
		now:      time.Now,
		log:      logger.WithField("component", "prices.Refresher"),
	}
}

// DefaultRefresher wires EODHD and Binance to the main database.
func DefaultRefresher(config Config, publisher Publisher) *Refresher {
	sources := []Source{
		NewBinanceSource(config.BinanceBaseURL, nil),
		NewEODHDSource(config.EODHDBaseURL, config.EODHDAPIKey),
	}
	return NewRefresher(
		repository.NewPositionSetRepository(),
		repository.NewHistoricalPriceRepository(),
		sources,
		config.LookbackDays,
		publisher,
	)
}

// WithClock replaces the time source, for tests.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// Refresh fetches closes after the last stored date of each active symbol.
// A failing symbol is reported in Result.Failed and does not stop the run.
func (r *Refresher) Refresh(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, err := r.symbols.ActiveSymbols(ctx)
	if err != nil {
		return Result{}, err
	}

	result := Result{Symbols: len(symbols)}
	today := utils.DateOnly(r.now().UTC())

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log := r.log.WithField("symbol", symbol)

		source := pick(r.sources, symbol)
		if source == nil {
			log.Warn("no price source for symbol")
			result.Skipped = append(result.Skipped, symbol)
			continue
		}

		latest, err := r.store.LatestDateForSymbol(ctx, symbol)
		if err != nil {
			return result, err
		}

		from := today.AddDate(0, 0, -r.lookback)
		if latest != nil {
			from = utils.DateOnly(latest.UTC()).AddDate(0, 0, 1)
		}
		if from.After(today) {
			log.Debug("prices already current")
			continue
		}

		bars, err := source.Daily(ctx, symbol, from, today)
		if err != nil {
			log.WithError(err).WithField("source", source.Name()).Error("price fetch failed")
			result.Failed = append(result.Failed, symbol)
			continue
		}

		rows := make([]model.HistoricalPrice, 0, len(bars))
		for _, b := range bars {
			rows = append(rows, model.HistoricalPrice{
				Symbol:   symbol,
				Date:     b.Date,
				Close:    b.Close,
				Currency: b.Currency,
				Source:   source.Name(),
			})
		}

		if err := r.store.Upsert(ctx, rows); err != nil {
			return result, err
		}
		result.Updated += len(rows)
	}

	r.log.WithFields(logger.Fields{
		"symbols": result.Symbols,
		"updated": result.Updated,
		"failed":  len(result.Failed),
		"skipped": len(result.Skipped),
	}).Info("historical prices refreshed")

	if result.Updated > 0 && r.events != nil {
		r.events.Publish(events.NewEvent(events.TypeHistoricalRefreshed, 0))
	}

	return result, nil
}
