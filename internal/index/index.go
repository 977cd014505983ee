// Package index provides full-text search over a graph snapshot.
//
// The index lives in an in-memory SQLite database and is rebuilt from a
// snapshot whenever needed. It is never a source of truth.
package index

import (
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/matsen/relgraph/internal/graph"
)

// DefaultLimit caps search results when no limit is given.
const DefaultLimit = 20

// Hit is one search result.
type Hit struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     graph.Kind `json:"type"`
	Subtitle string     `json:"subtitle,omitempty"`
	Score    float64    `json:"score"`
}

// Index is a searchable view of one snapshot.
type Index struct {
	db *sql.DB
}

// Build creates an index over s.
func Build(s graph.Snapshot) (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.load(s); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the database.
func (x *Index) Close() error {
	return x.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE VIRTUAL TABLE nodes_fts USING fts5(
			id,
			name,
			subtitle,
			attributes,
			kind UNINDEXED,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`
	_, err := db.Exec(schema)
	return err
}

func (x *Index) load(s graph.Snapshot) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes_fts (id, name, subtitle, attributes, kind)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range s.Nodes {
		if _, err := stmt.Exec(n.ID, n.Name, n.Subtitle, attributesText(n.Attributes), string(n.Kind)); err != nil {
			return fmt.Errorf("indexing node %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// attributesText renders attribute values in key order.
func attributesText(attrs map[string]string) string {
	keys := slices.Sorted(maps.Keys(attrs))
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, attrs[k])
	}
	return strings.Join(vals, " ")
}

// Search returns nodes matching query, best first. Each term matches as a
// prefix, and all terms must match.
func (x *Index) Search(query string, limit int) ([]Hit, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := x.db.Query(`
		SELECT id, name, kind, subtitle, bm25(nodes_fts)
		FROM nodes_fts
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		var kind string
		var score float64
		if err := rows.Scan(&h.ID, &h.Name, &kind, &h.Subtitle, &score); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		h.Kind = graph.Kind(kind)
		// bm25 is better when more negative.
		h.Score = -score
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hits: %w", err)
	}
	return hits, nil
}

// prepareFTSQuery quotes every term so FTS5 syntax in user input is taken
// literally, and makes each term a prefix match.
func prepareFTSQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, "\"", "\"\"")
		quoted = append(quoted, "\""+t+"\"*")
	}
	return strings.Join(quoted, " ")
}
