package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueID(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		taken map[string]bool
		want  string
	}{
		{name: "free", base: "a", taken: map[string]bool{}, want: "a"},
		{name: "nil set", base: "a", taken: nil, want: "a"},
		{name: "first suffix", base: "a", taken: map[string]bool{"a": true}, want: "a-1"},
		{name: "skips used suffixes", base: "a", taken: map[string]bool{"a": true, "a-1": true, "a-2": true}, want: "a-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueID(tt.base, tt.taken))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Karime Bastar Carranza": "karime-bastar-carranza",
		"José Pérez Ñúñez":       "jose-perez-nunez",
		"  ACME, S.A. de C.V. ":  "acme-s-a-de-c-v",
		"---":                    "",
		"":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestEdgeID(t *testing.T) {
	a := EdgeID("a", "b", "socio", 0)
	assert.Equal(t, a, EdgeID("a", "b", "socio", 0), "deterministic")
	assert.NotEqual(t, a, EdgeID("a", "b", "socio", 1))
	assert.NotEqual(t, a, EdgeID("b", "a", "socio", 0))
	assert.Regexp(t, `^e-[0-9a-f]{16}$`, a)
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, StyleFamily, StyleFor("Hermano"))
	assert.Equal(t, StyleBusiness, StyleFor(" socio "))
	assert.Equal(t, StyleEmployment, StyleFor("employment"))
	assert.Equal(t, StyleDefault, StyleFor("rival"))
	assert.Equal(t, StyleDefault, StyleFor(""))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("organization")
	assert.True(t, ok)
	assert.Equal(t, KindOrganization, k)

	k, ok = ParseKind("robot")
	assert.False(t, ok)
	assert.Equal(t, KindPerson, k)
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{{ID: "a", Attributes: map[string]string{"k": "v"}}},
		Edges: []Edge{{ID: "e", Source: "a", Target: "a"}},
	}
	c := s.Clone()
	c.Nodes[0].Attributes["k"] = "changed"
	c.Edges[0].Label = "changed"

	assert.Equal(t, "v", s.Nodes[0].Attributes["k"])
	assert.Equal(t, "", s.Edges[0].Label)
}

func TestSnapshot_Concat(t *testing.T) {
	a := Snapshot{Nodes: []Node{{ID: "a"}}, Edges: []Edge{}}
	b := Snapshot{Nodes: []Node{{ID: "b"}}, Edges: []Edge{{ID: "e", Source: "b", Target: "b"}}}

	got := a.Concat(b)
	assert.Len(t, got.Nodes, 2)
	assert.Len(t, got.Edges, 1)
	assert.Len(t, a.Nodes, 1, "receiver untouched")
	assert.Equal(t, map[string]bool{"a": true, "b": true}, got.IDs())
}

func TestSnapshot_JSONShape(t *testing.T) {
	s := Snapshot{Nodes: []Node{{ID: "a", Kind: KindPerson, Name: "Ana", Position: Position{X: 1, Y: 2}}}, Edges: []Edge{}}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[{"id":"a","type":"person","name":"Ana","position":{"x":1,"y":2}}],"edges":[]}`, string(data))
}
