// Package prices fetches daily closes for held instruments and keeps the
// historical_prices table current.
package prices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedSymbol = errors.New("symbol not supported by source")

// Bar is one daily close.
type Bar struct {
	Date     time.Time
	Close    decimal.Decimal
	Currency string
}

// Source fetches daily closes in [from, to], both inclusive.
type Source interface {
	Name() string
	Supports(symbol string) bool
	Daily(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error)
}

var cryptoAssets = map[string]struct{}{
	"BTC": {}, "ETH": {}, "SOL": {}, "BNB": {}, "XRP": {}, "ADA": {},
	"DOGE": {}, "DOT": {}, "AVAX": {}, "LTC": {}, "LINK": {}, "MATIC": {},
}

// cryptoBase returns the base asset of a crypto ticker such as "BTC" or
// "BTC-USD", or "" when the ticker is not a known crypto asset.
func cryptoBase(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range []string{"-USDT", "-USD", "USDT"} {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	if _, ok := cryptoAssets[s]; ok {
		return s
	}
	return ""
}

// pick returns the first source supporting symbol.
func pick(sources []Source, symbol string) Source {
	for _, s := range sources {
		if s.Supports(symbol) {
			return s
		}
	}
	return nil
}
