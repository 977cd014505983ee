package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/index"
	"github.com/matsen/relgraph/internal/session"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", index.DefaultLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <snapshot|file> <query>",
	Short: "Search nodes by name, ID or attribute",
	Long: `Search the nodes of a graph by name, subtitle, ID or attribute text.

Terms match word prefixes, ignore accents and case, and must all match.

Examples:
  relgraph search graph.json "bastar"
  relgraph search graph.json "BACK9001" --human`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

// SearchResponse is the JSON output of search.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []index.Hit `json:"hits"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	ctx := cmd.Context()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err := ingestFiles(ctx, sess, args[:1], session.ModeOverwrite); err != nil {
		return err
	}

	idx, err := index.Build(sess.Snapshot())
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(args[1], searchLimit)
	if err != nil {
		return err
	}

	if !humanOutput {
		return outputJSON(SearchResponse{Query: args[1], Hits: hits})
	}
	if len(hits) == 0 {
		outputHuman("No matches\n")
		return nil
	}
	for i, h := range hits {
		outputHuman("%d. %s [%s] %s\n", i+1, h.Name, h.Kind, h.ID)
		if h.Subtitle != "" {
			outputHuman("   %s\n", h.Subtitle)
		}
	}
	return nil
}
