// Package config handles configuration for the server component,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the uptimekeeper server.
//
// Fields:
//   - HTTPAddr: bind address for the JSON API.
//   - DataDir: root of the flat-file store.
//   - HashingSecret: salt fed to the password hash. Do not use the default in prod.
//   - TokenValidity: lifetime of a freshly issued or extended token.
//   - MaxChecks: per-user check quota.
//   - CheckInterval / ProbeWorkers: check runner cadence and concurrency.
type Config struct {
	HTTPAddr      string
	DataDir       string
	HashingSecret string
	TokenValidity time.Duration
	MaxChecks     int
	CheckInterval time.Duration
	ProbeWorkers  int
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.DataDir = ".data"
	c.HashingSecret = "thisIsASecret"
	c.TokenValidity = time.Hour
	c.MaxChecks = 5
	c.CheckInterval = time.Minute
	c.ProbeWorkers = 8
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
