// balloonpop is a webcam game: raise a finger and pop the rising balloons
// before the timer runs out.
//
// Usage:
//
//	balloonpop                - Play with the configured mode
//	balloonpop play           - Same as above
//	balloonpop scores         - Show the best and latest rounds
//	balloonpop version        - Print the version
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.balloonpop/config.yaml)
//	--db <path>         - Round history database (default: ~/.balloonpop/scores.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/balloonpop/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

// The camera window and the tray menu both need the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "balloonpop",
	Short: "Balloon Pop - pop balloons with your index finger",
	Long: `Balloon Pop opens your webcam and lets you pop rising balloons by
pointing at them. Every pop scores and speeds the balloons up.

Available commands:
  play     - Start the game (default)
  scores   - View the best and latest rounds
  version  - Print the version

Examples:
  balloonpop
  balloonpop play --mode classic
  balloonpop play --serve :8080
  balloonpop scores --mode guided`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to round history database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the config file and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Store.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger at the given level.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "balloonpop",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
