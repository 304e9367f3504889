package prices

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	EODHDAPIKey     string `envconfig:"EODHD_API_KEY"`
	EODHDBaseURL    string `envconfig:"EODHD_BASE_URL" default:"https://eodhd.com"`
	BinanceBaseURL  string `envconfig:"BINANCE_BASE_URL" default:"https://api.binance.com"`
	LookbackDays    int    `envconfig:"PRICE_LOOKBACK_DAYS" default:"365"`
	RefreshSchedule string `envconfig:"PRICE_REFRESH_SCHEDULE" default:"0 30 22 * * MON-FRI"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
