package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/library/internal/flagx"
	"github.com/dmitrijs2005/library/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from an explicit zero, so a partial file only overrides
// the keys it contains.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	DatabaseDSN         *string         `json:"database_dsn"`
	ShutdownTimeout     *timex.Duration `json:"shutdown_timeout"`
	LogLevel            *string         `json:"log_level"`
	BorrowingLimit      *int            `json:"borrowing_limit"`
	BorrowingPeriodDays *int            `json:"borrowing_period_days"`
	LateFeePerDay       *float64        `json:"late_fee_per_day"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag into config. Without the flag nothing is loaded.
// An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.BorrowingLimit != nil {
		config.BorrowingLimit = *c.BorrowingLimit
	}
	if c.BorrowingPeriodDays != nil {
		config.BorrowingPeriodDays = *c.BorrowingPeriodDays
	}
	if c.LateFeePerDay != nil {
		config.LateFeePerDay = *c.LateFeePerDay
	}
}
