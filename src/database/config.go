package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string `envconfig:"DATABASE_DRIVER" default:"sqlite"`          // "sqlite" or "postgres"
	Path         string `envconfig:"DATABASE_PATH" default:"data/portfolio.db"` // sqlite file location
	URL          string `envconfig:"DATABASE_URL"`                              // postgres DSN
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"1"`                // 1 silent .. 4 info
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
