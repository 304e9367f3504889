package prices

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Symbols overrides the active set's tickers when non-empty.
	Symbols []string `envconfig:"SYMBOLS"`
	Timeout string   `envconfig:"PRICE_REFRESH_TIMEOUT" default:"10m"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
