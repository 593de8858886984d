package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Debug           bool
	Serve           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool

	// One-shot request. Zero values fall back to the configured service defaults.
	Query       string
	QueryFile   string
	Delimiter   string
	TaxonID     int
	Species     string
	Cutoff      float64
	NetworkType string
	NetworkName string
	Export      bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("PROTEOVIS_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: PROTEOVIS_CONFIG)")
	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("PROTEOVIS_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: PROTEOVIS_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("PROTEOVIS_LOG_FORMAT", "json"),
		"Log format: json, text (env: PROTEOVIS_LOG_FORMAT)")
	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("PROTEOVIS_DEBUG", false),
		"Enable debug logging (env: PROTEOVIS_DEBUG)")
	fs.BoolVar(&cfg.Serve, "serve", false,
		"Serve requests over NATS instead of running one query")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("PROTEOVIS_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: PROTEOVIS_SHUTDOWN_TIMEOUT)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.StringVar(&cfg.Query, "query", "", "Protein-group query, one group per line")
	fs.StringVar(&cfg.QueryFile, "query-file", "", "Read the query from a file, - for stdin")
	fs.StringVar(&cfg.Delimiter, "delimiter", "", "Protein delimiter within a group")
	fs.IntVar(&cfg.TaxonID, "taxon", 0, "NCBI taxon identifier")
	fs.StringVar(&cfg.Species, "species", "", "Species name")
	fs.Float64Var(&cfg.Cutoff, "cutoff", -1, "Confidence cutoff in [0,1]")
	fs.StringVar(&cfg.NetworkType, "network-type", "", "Network type: functional, physical")
	fs.StringVar(&cfg.NetworkName, "name", "", "Name of the produced network")
	fs.BoolVar(&cfg.Export, "export", false, "Print the grouped network instead of the summary")

	fs.Usage = func() { printDetailedHelp(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.Serve || cfg.Validate {
		return nil
	}
	if cfg.Query != "" && cfg.QueryFile != "" {
		return fmt.Errorf("-query and -query-file are mutually exclusive")
	}
	if cfg.Query == "" && cfg.QueryFile == "" {
		return fmt.Errorf("one of -query, -query-file or -serve is required")
	}
	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - protein-group network aggregation

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Group a query and print the summary
  %[1]s -query $'P04637;P38398\nQ9Y6K9' -taxon 9606

  # Read the query from stdin with a custom delimiter
  cat groups.txt | %[1]s -query-file - -delimiter ,

  # Serve requests over NATS
  export PROTEOVIS_NATS_URLS=nats://localhost:4222
  %[1]s -serve -config config/proteovis.yaml

Version: %[2]s
Build: %[3]s
`, appName, Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
