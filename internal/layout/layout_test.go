package layout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/relgraph/internal/graph"
)

type stubLayouter struct {
	positions map[string]graph.Position
	err       error
	boxes     []Box
}

func (s *stubLayouter) Layout(_ context.Context, boxes []Box, _ []Link, _ Options) (map[string]graph.Position, error) {
	s.boxes = boxes
	return s.positions, s.err
}

func sample() graph.Snapshot {
	return graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Kind: graph.KindPerson, Position: graph.Position{X: 1, Y: 1}},
			{ID: "b", Kind: graph.KindOrganization, Position: graph.Position{X: 2, Y: 2}},
		},
		Edges: []graph.Edge{{ID: "e", Source: "a", Target: "b"}},
	}
}

func TestApply(t *testing.T) {
	l := &stubLayouter{positions: map[string]graph.Position{"a": {X: 50, Y: 60}}}
	in := sample()

	out, err := Apply(context.Background(), l, in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, graph.Position{X: 50, Y: 60}, out.Nodes[0].Position)
	assert.Equal(t, graph.Position{X: 2, Y: 2}, out.Nodes[1].Position, "omitted ids keep their position")
	assert.Equal(t, graph.Position{X: 1, Y: 1}, in.Nodes[0].Position, "input must not be modified")

	require.Len(t, l.boxes, 2)
	assert.Equal(t, Box{ID: "b", Width: 220, Height: 80}, l.boxes[1])
}

func TestApply_FailureKeepsInput(t *testing.T) {
	l := &stubLayouter{err: errors.New("boom")}
	in := sample()

	out, err := Apply(context.Background(), l, in, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, in, out)
}

func TestApply_NilLayouter(t *testing.T) {
	in := sample()
	out, err := Apply(context.Background(), nil, in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHTTPClient(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"positions": {"a": {"x": 10, "y": 20}}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithRate(100))
	pos, err := c.Layout(context.Background(), []Box{{ID: "a", Width: 180, Height: 70}}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, map[string]graph.Position{"a": {X: 10, Y: 20}}, pos)
	assert.Equal(t, DirectionDown, got.Options.Direction)
	require.Len(t, got.Nodes, 1)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
				assert.Equal(t, "overloaded", se.Message)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
		{
			name: "missing positions",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewHTTPClient(srv.URL, WithRate(100), WithTimeout(50*time.Millisecond))
			_, err := c.Layout(context.Background(), nil, nil, DefaultOptions())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
