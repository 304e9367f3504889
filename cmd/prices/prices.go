package prices

import (
	"context"
	"strings"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/prices"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// staticSymbols stands in for the active set when symbols are given explicitly.
type staticSymbols []string

func (s staticSymbols) ActiveSymbols(context.Context) ([]string, error) {
	return s, nil
}

// PriceLoader runs a one-shot historical price refresh.
type PriceLoader struct {
	Log     *logger.Entry
	DB      *gorm.DB
	Config  *Config
	Sources []prices.Source
}

func (p *PriceLoader) Start() (prices.Result, error) {
	if p.Config == nil {
		p.Config = GetConfig()
	}
	if p.Sources == nil {
		sourceConfig := prices.GetConfig()
		p.Sources = []prices.Source{
			prices.NewBinanceSource(sourceConfig.BinanceBaseURL, nil),
			prices.NewEODHDSource(sourceConfig.EODHDBaseURL, sourceConfig.EODHDAPIKey),
		}
	}

	refresher := prices.NewRefresher(
		p.symbolSource(),
		repository.NewHistoricalPriceRepositoryWithDB(p.DB),
		p.Sources,
		prices.GetConfig().LookbackDays,
		nil,
	)

	timeout, err := time.ParseDuration(p.Config.Timeout)
	if err != nil {
		return prices.Result{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := refresher.Refresh(ctx)
	if err != nil {
		p.Log.WithError(err).Error("price refresh failed")
		return result, err
	}

	p.Log.WithFields(logger.Fields{
		"symbols": result.Symbols,
		"updated": result.Updated,
		"failed":  strings.Join(result.Failed, ","),
		"skipped": strings.Join(result.Skipped, ","),
	}).Info("price refresh finished")

	return result, nil
}

func (p *PriceLoader) symbolSource() interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
} {
	var symbols staticSymbols
	for _, s := range p.Config.Symbols {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) > 0 {
		return symbols
	}
	return repository.NewPositionSetRepositoryWithDB(p.DB)
}
