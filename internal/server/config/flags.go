package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/uptimekeeper/internal/flagx"
)

var flagNames = []string{"-a", "-d", "-s", "-t", "-m", "-i", "-w"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   data directory
//	-s string   password hashing secret
//	-t int      token validity, minutes
//	-m int      max checks per user
//	-i int      check interval, seconds
//	-w int      concurrent probes
//
// Only the flags above are looked at; everything else on the command line is
// filtered out with flagx.FilterArgs.
func parseFlags(config *Config) {
	if err := applyFlags(config, os.Args[1:]); err != nil {
		panic(err)
	}
}

func applyFlags(config *Config, osArgs []string) error {
	args := flagx.FilterArgs(osArgs, flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.HashingSecret, "s", config.HashingSecret, "password hashing secret")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.MaxChecks, "m", config.MaxChecks, "max checks per user")
	checkInterval := fs.Int("i", int(config.CheckInterval.Seconds()), "check interval (in seconds)")
	fs.IntVar(&config.ProbeWorkers, "w", config.ProbeWorkers, "concurrent probes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
	config.CheckInterval = time.Duration(*checkInterval) * time.Second
	return nil
}
