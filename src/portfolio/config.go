package portfolio

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MaxStaleTradingDays int    `envconfig:"HISTORY_MAX_STALE_TRADING_DAYS" default:"1"`
	DefaultSetName      string `envconfig:"DEFAULT_POSITION_SET_NAME" default:"default"`
	DefaultSetLabel     string `envconfig:"DEFAULT_POSITION_SET_LABEL" default:"My Portfolio"`
	SeedDemoData        bool   `envconfig:"SEED_DEMO_DATA" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
