package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/matsen/relgraph/internal/document"
	"github.com/matsen/relgraph/internal/flatten"
	"github.com/matsen/relgraph/internal/index"
	"github.com/matsen/relgraph/internal/session"
	"github.com/matsen/relgraph/internal/viz"
)

// maxUpload caps multipart file parts read into memory.
const maxUpload = 32 << 20

func (s *Server) registerRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.echo.GET("/", s.viewerHandler)

	api := s.echo.Group("/api")
	api.GET("/graph", s.getGraphHandler)
	api.DELETE("/graph", s.resetGraphHandler)
	api.POST("/ingest", s.ingestHandler)
	api.POST("/sample", s.sampleHandler)
	api.GET("/search", s.searchHandler)
	api.GET("/nodes/:id/details", s.nodeDetailsHandler)
	api.POST("/nodes/:id/image", s.nodeImageHandler)
}

func (s *Server) viewerHandler(c echo.Context) error {
	opts := viz.DefaultOptions()
	opts.DetailsURL = "/api/nodes/"
	if layout := c.QueryParam("layout"); layout != "" {
		opts.Layout = layout
	}

	html, err := viz.GenerateHTML(s.session.Snapshot(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.HTML(http.StatusOK, html)
}

func (s *Server) getGraphHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session.Snapshot())
}

func (s *Server) resetGraphHandler(c echo.Context) error {
	s.session.Reset()
	return c.NoContent(http.StatusNoContent)
}

type ingestResponse struct {
	Report session.Report `json:"report"`
}

func (s *Server) ingestHandler(c echo.Context) error {
	mode, err := session.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	raw, err := requestDocument(c)
	if err != nil {
		return err
	}

	report, err := s.session.Ingest(c.Request().Context(), raw, mode)
	if err != nil {
		if errors.Is(err, document.ErrParse) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, ingestResponse{Report: report})
}

// requestDocument reads the document from a multipart "file" part, or from
// the raw body otherwise.
func requestDocument(c echo.Context) ([]byte, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return formFile(c, "file")
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	return raw, nil
}

func formFile(c echo.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "missing form file "+strconv.Quote(field))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to open form file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read form file")
	}
	if len(data) > maxUpload {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "form file too large")
	}
	return data, nil
}

func (s *Server) sampleHandler(c echo.Context) error {
	mode, err := session.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	report, err := s.session.LoadSample(c.Request().Context(), mode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ingestResponse{Report: report})
}

type searchResponse struct {
	Query string      `json:"query"`
	Hits  []index.Hit `json:"hits"`
}

func (s *Server) searchHandler(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query parameter q")
	}
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	hits, err := s.search(q, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchResponse{Query: q, Hits: hits})
}

func (s *Server) nodeDetailsHandler(c echo.Context) error {
	id := c.Param("id")
	entries, ok := s.session.Details(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "node not found: "+id)
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, flatten.FormatOutput(entries))
	}
	return c.JSON(http.StatusOK, entries)
}

type imageResponse struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

func (s *Server) nodeImageHandler(c echo.Context) error {
	id := c.Param("id")

	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, `missing form file "image"`)
	}
	body, err := formFile(c, "image")
	if err != nil {
		return err
	}

	u, err := s.session.AttachImage(c.Request().Context(), id, fh.Filename, body)
	switch {
	case errors.Is(err, session.ErrNodeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "node not found: "+id)
	case errors.Is(err, session.ErrNoUploader):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, imageResponse{ID: id, Image: u})
}
