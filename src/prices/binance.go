package prices

import (
	"context"
	"net/http"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	SourceBinance = "binance"

	binanceQuote      = "USDT"
	binanceKlineLimit = 1000
	millis            = 1000
)

// BinanceSource reads daily klines for crypto holdings, quoted in USDT.
type BinanceSource struct {
	exchange goex.API
}

func NewBinanceSource(baseURL string, httpClient *http.Client) *BinanceSource {
	if baseURL == "" {
		baseURL = binance.GLOBAL_API_BASE_URL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	apiConfig := &goex.APIConfig{
		HttpClient: httpClient,
		Endpoint:   baseURL,
	}
	return &BinanceSource{exchange: binance.NewWithConfig(apiConfig)}
}

func (s *BinanceSource) Name() string {
	return SourceBinance
}

func (s *BinanceSource) Supports(symbol string) bool {
	return cryptoBase(symbol) != ""
}

// Daily ignores ctx: the exchange client has no context support.
func (s *BinanceSource) Daily(_ context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	base := cryptoBase(symbol)
	if base == "" {
		return nil, ErrUnsupportedSymbol
	}

	pair := goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: binanceQuote})
	klines, err := s.exchange.GetKlineRecords(
		pair,
		goex.KLINE_PERIOD_1DAY,
		binanceKlineLimit,
		goex.OptionalParameter{}.
			Optional("startTime", from.Unix()*millis).
			Optional("endTime", to.Unix()*millis),
	)
	if err != nil {
		logger.WithFields(logger.Fields{
			"source": SourceBinance,
			"symbol": symbol,
		}).WithError(err).Error("Binance kline request failed")
		return nil, err
	}

	bars := make([]Bar, 0, len(klines))
	for _, k := range klines {
		bars = append(bars, Bar{
			Date:     time.Unix(k.Timestamp, 0).UTC(),
			Close:    decimal.NewFromFloat(k.Close),
			Currency: "USD",
		})
	}
	return bars, nil
}
