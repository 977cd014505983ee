package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/relgraph/internal/graph"
)

const (
	// DefaultTimeout bounds a single layout request.
	DefaultTimeout = 10 * time.Second

	// DefaultRate is the request rate allowed against the layout service.
	DefaultRate = 2.0

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 8 << 20
)

var (
	// ErrUnavailable indicates the layout service could not be reached.
	ErrUnavailable = errors.New("layout service unavailable")

	// ErrInvalidResponse indicates the layout service answered with something
	// that is not a position map.
	ErrInvalidResponse = errors.New("invalid response from layout service")
)

// StatusError is a non-2xx answer from the layout service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("layout service error (status %d): %s", e.StatusCode, e.Message)
}

type request struct {
	Nodes   []Box   `json:"nodes"`
	Edges   []Link  `json:"edges"`
	Options Options `json:"options"`
}

type response struct {
	Positions map[string]graph.Position `json:"positions"`
}

// HTTPClient is a rate-limited Layouter backed by an HTTP endpoint that
// accepts {nodes, edges, options} and answers {positions: {id: {x, y}}}.
type HTTPClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRate sets the allowed requests per second.
func WithRate(perSecond float64) ClientOption {
	return func(c *HTTPClient) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewHTTPClient creates a layout client for endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
		endpoint:   endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout implements Layouter.
func (c *HTTPClient) Layout(ctx context.Context, boxes []Box, links []Link, opts Options) (map[string]graph.Position, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(request{Nodes: boxes, Edges: links, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out.Positions == nil {
		return nil, fmt.Errorf("%w: missing positions", ErrInvalidResponse)
	}
	return out.Positions, nil
}
