package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/relgraph/internal/logger"
	"github.com/matsen/relgraph/internal/server"
	"github.com/matsen/relgraph/internal/session"
)

var (
	serveAddr     string
	serveSnapshot string
	serveSample   bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "Snapshot file to load at startup")
	serveCmd.Flags().BoolVar(&serveSample, "sample", false, "Start with the bundled sample graph")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph API and viewer over HTTP",
	Long: `Serve the ingestion API and an HTML viewer for the current graph.

Endpoints:
  GET    /                        viewer
  GET    /api/graph               current snapshot
  DELETE /api/graph               clear the graph
  POST   /api/ingest?mode=merge   ingest a JSON body or multipart "file"
  POST   /api/sample              load the sample graph
  GET    /api/search?q=           search nodes
  GET    /api/nodes/:id/details   flattened source record
  POST   /api/nodes/:id/image     attach a multipart "image"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	if err := seedSession(ctx, sess); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(sess, server.Options{RequestLog: cfg.Debug})
	logger.Debug("Session ready", "nodes", len(sess.Snapshot().Nodes))
	return srv.Start(ctx, addr)
}

func seedSession(ctx context.Context, sess *session.Session) error {
	if serveSnapshot != "" {
		if _, err := restoreSnapshot(sess, serveSnapshot); err != nil {
			return err
		}
	}
	if serveSample {
		if _, err := sess.LoadSample(ctx, session.ModeMerge); err != nil {
			return err
		}
	}
	return nil
}
