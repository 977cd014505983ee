package main

import (
	"context"
	"fmt"

	"github.com/matsen/relgraph/internal/assemble"
	"github.com/matsen/relgraph/internal/config"
	"github.com/matsen/relgraph/internal/document"
	"github.com/matsen/relgraph/internal/extract"
	"github.com/matsen/relgraph/internal/flatten"
	"github.com/matsen/relgraph/internal/imagestore"
	"github.com/matsen/relgraph/internal/layout"
	"github.com/matsen/relgraph/internal/logger"
	"github.com/matsen/relgraph/internal/session"
)

// newExtractor builds the extractor from the configured paths table, or the
// built-in one when none is set.
func newExtractor(cfg *config.Config) (*extract.Extractor, error) {
	if cfg.PathsFile == "" {
		return extract.Default(), nil
	}
	table, err := extract.LoadTable(cfg.PathsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: paths_file: %v", config.ErrInvalid, err)
	}
	return extract.New(table), nil
}

// newUploader returns the S3 uploader backed by the local store, or just the
// local store when no bucket is configured.
func newUploader(ctx context.Context, cfg *config.Config) (imagestore.Uploader, error) {
	local, err := imagestore.NewLocalStore(cfg.Upload.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("opening local image store: %w", err)
	}

	var primary imagestore.Uploader
	if s3cfg := cfg.Upload.S3; s3cfg.Bucket != "" {
		up, err := imagestore.NewS3Uploader(ctx, imagestore.S3Options{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Prefix:    s3cfg.Prefix,
			PublicURL: s3cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		primary = up
		logger.Debug("Using S3 image storage", "bucket", s3cfg.Bucket)
	}
	return imagestore.WithFallback(primary, local), nil
}

// newLayouter returns the HTTP layout client, or nil when no endpoint is
// configured.
func newLayouter(cfg *config.Config) layout.Layouter {
	if cfg.Layout.Endpoint == "" {
		return nil
	}
	return layout.NewHTTPClient(cfg.Layout.Endpoint,
		layout.WithTimeout(cfg.Layout.Timeout),
		layout.WithRate(cfg.Layout.Rate),
	)
}

// newSession wires a session from configuration.
func newSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	extractor, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}
	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	canvas := assemble.DefaultCanvas()
	canvas.CenterX = cfg.Canvas.CenterX
	canvas.CenterY = cfg.Canvas.CenterY

	asm := assemble.New(assemble.Options{
		Extractor: extractor,
		Uploader:  uploader,
		Viewport: assemble.Viewport{
			Width:      cfg.Viewport.Width,
			NodeWidth:  cfg.Viewport.NodeWidth,
			NodeHeight: cfg.Viewport.NodeHeight,
			Padding:    cfg.Viewport.Padding,
		},
		Canvas: canvas,
	})

	opts := session.Options{
		Assembler:  asm,
		Uploader:   uploader,
		Exclusions: flatten.ExclusionSet(cfg.Exclusions),
		Layouter:   newLayouter(cfg),
		Parse:      document.Options{Repair: cfg.Parse.Repair},
	}
	return session.New(opts), nil
}

// FileReport is the outcome of ingesting one file.
type FileReport struct {
	File   string         `json:"file"`
	Report session.Report `json:"report"`
}

// ingestFiles feeds paths into sess in order. The first file uses first;
// the rest always merge.
func ingestFiles(ctx context.Context, sess *session.Session, paths []string, first session.Mode) ([]FileReport, error) {
	reports := make([]FileReport, 0, len(paths))
	mode := first
	for _, path := range paths {
		raw, err := readInput(path)
		if err != nil {
			return reports, err
		}
		report, err := sess.Ingest(ctx, raw, mode)
		if err != nil {
			return reports, fmt.Errorf("%s: %w", path, err)
		}
		reports = append(reports, FileReport{File: path, Report: report})
		mode = session.ModeMerge
	}
	return reports, nil
}
