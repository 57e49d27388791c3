package quotes

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL        string `envconfig:"QUOTE_BASE_URL" default:"https://query2.finance.yahoo.com"`
	TimeoutSeconds int    `envconfig:"QUOTE_TIMEOUT_SECONDS" default:"8"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
