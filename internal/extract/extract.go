// Package extract recovers identity fields (name, national ID, tax ID, birth
// date) from documents whose shape is not known in advance.
//
// Every field is probed independently against an ordered list of candidate
// paths from a Table; the first acceptable value wins. A miss on one field
// never affects another.
package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/matsen/relgraph/internal/graph"
	"github.com/matsen/relgraph/internal/jsonpath"
)

// Sentinels used when a field cannot be extracted.
const (
	UnknownName  = "Persona Desconocida"
	NotAvailable = "N/A"
)

// Fact keys.
const (
	FactBirthDate  = "birth_date"
	FactDocumentID = "document_id"
)

// Identity is the extracted identity of a document. Every field is always
// populated, with sentinels standing in for misses.
type Identity struct {
	Name        string            `json:"name"`
	NationalID  string            `json:"nationalId"`
	SecondaryID string            `json:"secondaryId"`
	Facts       map[string]string `json:"facts"`
	Kind        graph.Kind        `json:"kind"`
}

// Recognized reports whether extraction found anything identifying.
func (id Identity) Recognized() bool {
	return id.Name != UnknownName || id.NationalID != NotAvailable
}

// Extractor applies a fixed path table to documents.
type Extractor struct {
	table Table
}

// New returns an extractor over a private copy of table.
func New(table Table) *Extractor {
	return &Extractor{table: table.clone()}
}

// Default returns an extractor over the bundled table.
func Default() *Extractor {
	return New(DefaultTable())
}

// Extract determines the most likely identity described by doc.
func (e *Extractor) Extract(doc gjson.Result) Identity {
	id := Identity{
		Name:        UnknownName,
		NationalID:  e.firstID(doc, e.table.NationalID),
		SecondaryID: e.firstID(doc, e.table.SecondaryID),
		Facts:       make(map[string]string),
		Kind:        graph.KindPerson,
	}

	if name := e.personName(doc); name != "" {
		id.Name = name
	} else if org := e.firstText(doc, e.table.OrganizationName); org != "" {
		id.Name = org
		id.Kind = graph.KindOrganization
	}

	// Legal entities carry a 12-character RFC; individuals carry 13.
	if id.NationalID == NotAvailable && utf8.RuneCountInString(id.SecondaryID) == 12 {
		id.Kind = graph.KindOrganization
	}

	if v := e.firstText(doc, e.table.BirthDate); v != "" {
		id.Facts[FactBirthDate] = v
	}
	if v := e.firstScalar(doc, e.table.DocumentID); v != "" {
		id.Facts[FactDocumentID] = v
	}

	return id
}

// firstID returns the first string longer than five characters.
func (e *Extractor) firstID(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		v := strings.TrimSpace(jsonpath.String(doc, p, ""))
		if utf8.RuneCountInString(v) > 5 {
			return v
		}
	}
	return NotAvailable
}

// personName resolves a full name, preferring composed-name paths and
// falling back to joining given name and surnames.
func (e *Extractor) personName(doc gjson.Result) string {
	name := ""
	for _, p := range e.table.FullName {
		v := strings.TrimSpace(jsonpath.String(doc, p, ""))
		if utf8.RuneCountInString(v) <= 3 || !strings.Contains(v, " ") {
			continue
		}
		name = v
		if src, ok := e.surnameSource(p); ok {
			name = joinName(name,
				jsonpath.String(doc, src.Paternal, ""),
				jsonpath.String(doc, src.Maternal, ""))
		}
		break
	}

	if name == "" || len(strings.Fields(name)) < 2 {
		if composed := e.composedName(doc); composed != "" {
			return composed
		}
	}
	return joinName(name)
}

func (e *Extractor) composedName(doc gjson.Result) string {
	given := e.firstText(doc, e.table.GivenName)
	paternal := e.firstText(doc, e.table.PaternalSurname)
	if given == "" || paternal == "" {
		return ""
	}
	return joinName(given, paternal, e.firstText(doc, e.table.MaternalSurname))
}

func (e *Extractor) surnameSource(path string) (SurnameSource, bool) {
	for _, s := range e.table.SurnameSources {
		if s.Name == path {
			return s, true
		}
	}
	return SurnameSource{}, false
}

// firstText returns the first non-blank string.
func (e *Extractor) firstText(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		if v := strings.TrimSpace(jsonpath.String(doc, p, "")); v != "" {
			return v
		}
	}
	return ""
}

// firstScalar is like firstText but also accepts numbers, which some sources
// use for document folios.
func (e *Extractor) firstScalar(doc gjson.Result, paths []string) string {
	for _, p := range paths {
		v, ok := jsonpath.Lookup(doc, p)
		if !ok {
			continue
		}
		switch v.Type {
		case gjson.String, gjson.Number:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// joinName joins name parts with single spaces, dropping blanks.
func joinName(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
