package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/document"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Show the identity recovered from a record",
	Long: `Show the name, national ID, tax ID and facts recovered from a single
JSON record, using the configured candidate-path table.

Fields that cannot be found are reported as "N/A" (or "Persona Desconocida"
for the name).`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	extractor, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	raw, err := readInput(args[0])
	if err != nil {
		return err
	}
	doc, err := document.Parse(raw, document.Options{Repair: cfg.Parse.Repair})
	if err != nil {
		return err
	}

	id := extractor.Extract(doc)
	if !humanOutput {
		return outputJSON(id)
	}

	outputHuman("Name:         %s\n", id.Name)
	outputHuman("Kind:         %s\n", id.Kind)
	outputHuman("National ID:  %s\n", id.NationalID)
	outputHuman("Secondary ID: %s\n", id.SecondaryID)
	keys := make([]string, 0, len(id.Facts))
	for k := range id.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		outputHuman("  %s: %s\n", k, id.Facts[k])
	}
	if !id.Recognized() {
		outputHuman("(no recognizable identity)\n")
	}
	return nil
}
