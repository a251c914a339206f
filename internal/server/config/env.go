package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "UPTIME_"

// parseEnv overlays Config with UPTIME_* variables. A .env file in the
// working directory is loaded first if present; variables already set in the
// process environment win over it. Malformed values panic.
func parseEnv(config *Config) {
	_ = godotenv.Load()
	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return v, ok && v != ""
	}

	if v, ok := get("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := get("DATA_DIR"); ok {
		config.DataDir = v
	}
	if v, ok := get("HASHING_SECRET"); ok {
		config.HashingSecret = v
	}
	if v, ok := get("TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_VALIDITY: %w", envPrefix, err)
		}
		config.TokenValidity = d
	}
	if v, ok := get("MAX_CHECKS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_CHECKS: %w", envPrefix, err)
		}
		config.MaxChecks = n
	}
	if v, ok := get("CHECK_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCHECK_INTERVAL: %w", envPrefix, err)
		}
		config.CheckInterval = d
	}
	if v, ok := get("PROBE_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPROBE_WORKERS: %w", envPrefix, err)
		}
		config.ProbeWorkers = n
	}

	return nil
}
