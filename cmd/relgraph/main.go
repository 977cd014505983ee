// Package main provides the relgraph CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/config"
	"github.com/matsen/relgraph/internal/logger"
	"github.com/matsen/relgraph/internal/logger/console"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so every failure is reported here.
		exitWithError(exitCode(err), "%s", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relgraph",
	Short: "Turn schema-less JSON records into relationship graphs",
	Long: `relgraph ingests arbitrary JSON documents describing people,
organizations and the relationships between them, and turns them into a
graph of typed nodes and labeled edges.

Input can be graph-shaped ({"nodes": [...]}), a single record, or an array
of records. Records are searched for names, national IDs and tax IDs
wherever they happen to live in the document.

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./relgraph.yml or ~/.config/relgraph/relgraph.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration and installs the console logger, exits
// on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	logger.Init(console.New(console.Params{Debug: cfg.Debug, Output: os.Stderr}))
	return cfg
}
