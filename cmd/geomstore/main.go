package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jward/geomstore"
	"github.com/jward/geomstore/internal/config"
	"github.com/jward/geomstore/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDB      string
	flagConfig  string
	flagFormat  string
	flagVerbose bool
	flagLogFile string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// stdout receives command results.
var stdout io.Writer = os.Stdout

// Resolved in PersistentPreRunE from the config file and flags.
var (
	settings *config.Config
	log      = zap.NewNop()
)

func main() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "geomstore",
	Short:         "Store and query OpenStreetMap element geometries",
	Long:          "geomstore keeps the geometry of OSM nodes, ways and relations in a SQLite database, answers bounding box queries and removes geometries no quest references anymore.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		settings = cfg
		log = logger.New(logger.Options{Verbose: cfg.Log.Verbose, File: cfg.Log.File})
		return nil
	},
	// No Run, prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: geomstore.db or the config file value)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also write JSON logs to this file")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(refsCmd)
}

// loadSettings reads the config file, if any, and applies flags that were
// set explicitly on top of it.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = flagDB
	}
	if flags.Changed("verbose") {
		cfg.Log.Verbose = flagVerbose
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEngine opens the configured database.
func openEngine(opts ...geomstore.Option) (*geomstore.Engine, error) {
	opts = append([]geomstore.Option{
		geomstore.WithLogger(log),
		geomstore.WithWorkers(settings.Import.Workers),
	}, opts...)
	e, err := geomstore.New(settings.Database, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", settings.Database, err)
	}
	return e, nil
}
