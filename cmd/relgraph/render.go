package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/session"
	"github.com/matsen/relgraph/internal/viz"
)

var (
	renderOutput string
	renderLayout string
	renderTitle  string
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().StringVar(&renderLayout, "layout", "preset", "Layout algorithm: preset, force, circle, or grid")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Page title")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <snapshot|file>...",
	Short: "Render a graph as a standalone HTML page",
	Long: `Render an interactive Cytoscape.js page for a graph.

Arguments may be snapshot files written by "relgraph ingest" or raw
documents; they are ingested in order and merged. The default "preset"
layout keeps stored node positions.

Examples:
  relgraph render graph.json -o graph.html
  relgraph render persona.json empresa.json --layout force -o graph.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	ctx := cmd.Context()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err := ingestFiles(ctx, sess, args, session.ModeOverwrite); err != nil {
		return err
	}

	opts := viz.DefaultOptions()
	opts.Layout = renderLayout
	if renderTitle != "" {
		opts.Title = renderTitle
	}
	html, err := viz.GenerateHTML(sess.Snapshot(), opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if err := writeOutput(renderOutput, []byte(html)); err != nil {
		return err
	}
	if renderOutput == "" {
		return nil
	}
	if humanOutput {
		outputHuman("Visualization written to %s\n", renderOutput)
		return nil
	}
	return outputJSON(OutputResponse{Output: renderOutput})
}
