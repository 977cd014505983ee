// Package server exposes a session over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/matsen/relgraph/internal/index"
	"github.com/matsen/relgraph/internal/logger"
	"github.com/matsen/relgraph/internal/session"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// BodyLimit caps request bodies, e.g. "32M".
	BodyLimit string
	// RequestLog enables per-request access logging.
	RequestLog bool
}

// Server serves the graph API and viewer.
type Server struct {
	echo    *echo.Echo
	session *session.Session

	// search index cache, rebuilt when the session version changes
	mu         sync.Mutex
	idx        *index.Index
	idxVersion uint64
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates a server for sess.
func New(sess *session.Session, opts Options) *Server {
	if opts.BodyLimit == "" {
		opts.BodyLimit = "32M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(opts.BodyLimit))
	if opts.RequestLog {
		e.Use(requestLogger())
	}

	s := &Server{echo: e, session: sess}
	s.registerRoutes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
		return err
	}
	s.closeIndex()
	return nil
}

// search queries an index over the current snapshot, rebuilding it when the
// snapshot has changed since the last search.
func (s *Server) search(query string, limit int) ([]index.Hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.session.Version()
	if s.idx == nil || s.idxVersion != version {
		idx, err := index.Build(s.session.Snapshot())
		if err != nil {
			return nil, err
		}
		if s.idx != nil {
			s.idx.Close()
		}
		s.idx, s.idxVersion = idx, version
	}
	return s.idx.Search(query, limit)
}

func (s *Server) closeIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx != nil {
		s.idx.Close()
		s.idx = nil
	}
}

// errorHandler renders every error as ErrorResponse.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logger.Error("Request failed", "path", c.Path(), "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Error: msg})
	}
	if err != nil {
		logger.Error("Failed to write error response", "err", err)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}
