package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/uptimekeeper/internal/flagx"
	"github.com/dmitrijs2005/uptimekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the -c / -config file. Durations use
// timex.Duration so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr      string         `json:"http_addr"`
	DataDir       string         `json:"data_dir"`
	HashingSecret string         `json:"hashing_secret"`
	TokenValidity timex.Duration `json:"token_validity"`
	MaxChecks     int            `json:"max_checks"`
	CheckInterval timex.Duration `json:"check_interval"`
	ProbeWorkers  int            `json:"probe_workers"`
}

// parseJson overlays Config with the file named by -c / -config, if any.
// Fields absent from the file keep their current value. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	path := flagx.JSONConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := applyJson(config, data); err != nil {
		panic(err)
	}
}

func applyJson(config *Config, data []byte) error {
	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.DataDir != "" {
		config.DataDir = c.DataDir
	}
	if c.HashingSecret != "" {
		config.HashingSecret = c.HashingSecret
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.MaxChecks != 0 {
		config.MaxChecks = c.MaxChecks
	}
	if c.CheckInterval.Duration != 0 {
		config.CheckInterval = c.CheckInterval.Duration
	}
	if c.ProbeWorkers != 0 {
		config.ProbeWorkers = c.ProbeWorkers
	}

	return nil
}
