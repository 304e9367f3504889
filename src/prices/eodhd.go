package prices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/utils"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	SourceEODHD = "eodhd"

	eodhdRetryCount   = 2
	eodhdRetryWait    = 500 * time.Millisecond
	eodhdRetryMaxWait = 5 * time.Second
)

var ErrMissingAPIKey = errors.New("EODHD_API_KEY is not set")

// exchange suffix used by the portfolio -> EODHD exchange code and trading currency
var eodhdExchanges = map[string]struct {
	code     string
	currency string
}{
	"":   {code: "US", currency: "USD"},
	"T":  {code: "TSE", currency: "JPY"},
	"L":  {code: "LSE", currency: "GBP"},
	"PA": {code: "PA", currency: "EUR"},
	"DE": {code: "XETRA", currency: "EUR"},
	"AS": {code: "AS", currency: "EUR"},
	"TO": {code: "TO", currency: "CAD"},
	"HK": {code: "HK", currency: "HKD"},
	"AX": {code: "AU", currency: "AUD"},
}

type eodhdBar struct {
	Date          string          `json:"date"`
	Close         decimal.Decimal `json:"close"`
	AdjustedClose decimal.Decimal `json:"adjusted_close"`
}

// EODHDSource reads end-of-day prices from eodhd.com.
type EODHDSource struct {
	apiKey string
	http   *resty.Client
}

func isRetryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == 429 || code == 408 || (code >= 500 && code <= 599)
}

func NewEODHDSource(baseURL, apiKey string) *EODHDSource {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetRetryCount(eodhdRetryCount).
		SetRetryWaitTime(eodhdRetryWait).
		SetRetryMaxWaitTime(eodhdRetryMaxWait).
		AddRetryCondition(isRetryable)

	return &EODHDSource{
		apiKey: apiKey,
		http:   httpClient,
	}
}

func (s *EODHDSource) Name() string {
	return SourceEODHD
}

// Supports accepts any non-crypto ticker.
func (s *EODHDSource) Supports(symbol string) bool {
	return strings.TrimSpace(symbol) != "" && cryptoBase(symbol) == ""
}

// eodhdTicker maps "AAPL" to "AAPL.US" and "7203.T" to "7203.TSE".
func eodhdTicker(symbol string) (string, string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	base, suffix := s, ""
	if i := strings.LastIndex(s, "."); i > 0 {
		base, suffix = s[:i], s[i+1:]
	}

	if ex, ok := eodhdExchanges[suffix]; ok {
		return base + "." + ex.code, ex.currency
	}
	return s, ""
}

func (s *EODHDSource) Daily(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	ticker, currency := eodhdTicker(symbol)
	log := logger.WithFields(logger.Fields{
		"source": SourceEODHD,
		"symbol": symbol,
		"ticker": ticker,
	})

	var rows []eodhdBar
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"fmt":       "json",
			"api_token": s.apiKey,
			"from":      utils.FormatDate(from),
			"to":        utils.FormatDate(to),
		}).
		SetResult(&rows).
		Get("/api/eod/{ticker}")
	if err != nil {
		log.WithError(err).Error("EODHD request failed")
		return nil, fmt.Errorf("eodhd %s: %w", ticker, err)
	}
	if resp.IsError() {
		log.WithField("status", resp.StatusCode()).Error("EODHD returned an error status")
		return nil, fmt.Errorf("eodhd %s: %s", ticker, resp.Status())
	}

	bars := make([]Bar, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			log.WithField("date", row.Date).Warn("skipping EODHD row with bad date")
			continue
		}

		closePrice := row.AdjustedClose
		if closePrice.IsZero() {
			closePrice = row.Close
		}

		bars = append(bars, Bar{Date: date, Close: closePrice, Currency: currency})
	}

	log.WithField("bars", len(bars)).Debug("EODHD prices fetched")
	return bars, nil
}
