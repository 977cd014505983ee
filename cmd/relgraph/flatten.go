package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/document"
	"github.com/matsen/relgraph/internal/flatten"
)

var flattenAll bool

func init() {
	flattenCmd.Flags().BoolVar(&flattenAll, "all", false, "Keep excluded bookkeeping keys (status, code, message, ...)")
	rootCmd.AddCommand(flattenCmd)
}

var flattenCmd = &cobra.Command{
	Use:   "flatten <file>",
	Short: "Flatten a JSON document into display entries",
	Long: `Flatten a nested JSON document into "Key: Value" entries for display.

Keys are title-cased, values normalized, and repeated keys collapsed
(last value wins). Bookkeeping keys from the configured exclusion list are
dropped with their whole subtree unless --all is given.

Examples:
  relgraph flatten persona.json --human
  curl -s $API/persona | relgraph flatten -`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

func runFlatten(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	raw, err := readInput(args[0])
	if err != nil {
		return err
	}
	doc, err := document.Parse(raw, document.Options{Repair: cfg.Parse.Repair})
	if err != nil {
		return err
	}

	excluded := flatten.ExclusionSet(cfg.Exclusions)
	if flattenAll {
		excluded = nil
	}
	entries := flatten.Flatten(doc, excluded)

	if humanOutput {
		if len(entries) > 0 {
			outputHuman("%s\n", flatten.FormatOutput(entries))
		}
		return nil
	}
	return outputJSON(entries)
}
