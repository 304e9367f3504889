package server

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort     string   `envconfig:"SERVER_PORT"`
	Port           string   `envconfig:"PORT" default:"9898"`
	AppName        string   `envconfig:"APP_NAME" default:"portfolio-api"`
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}

// ListenPort prefers SERVER_PORT over PORT.
func (c *Config) ListenPort() string {
	if c.ServerPort != "" {
		return c.ServerPort
	}
	return c.Port
}
