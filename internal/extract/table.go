package extract

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matsen/relgraph/internal/jsonpath"
)

//go:embed paths.yaml
var defaultTableYAML []byte

// SurnameSource names a full-name path whose source omits surnames, along
// with that source's own surname paths.
type SurnameSource struct {
	Name     string `yaml:"name"`
	Paternal string `yaml:"paternal"`
	Maternal string `yaml:"maternal"`
}

// Table lists candidate paths per identity field, highest priority first.
type Table struct {
	NationalID       []string        `yaml:"national_id"`
	FullName         []string        `yaml:"full_name"`
	GivenName        []string        `yaml:"given_name"`
	PaternalSurname  []string        `yaml:"paternal_surname"`
	MaternalSurname  []string        `yaml:"maternal_surname"`
	SurnameSources   []SurnameSource `yaml:"surname_sources"`
	SecondaryID      []string        `yaml:"secondary_id"`
	BirthDate        []string        `yaml:"birth_date"`
	DocumentID       []string        `yaml:"document_id"`
	OrganizationName []string        `yaml:"organization_name"`
}

// DefaultTable returns the bundled candidate path table.
func DefaultTable() Table {
	t, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("bundled path table is invalid: %v", err))
	}
	return t
}

// LoadTable reads a YAML path table from a file.
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening path table: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Table{}, fmt.Errorf("reading path table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML path table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing path table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate checks that every path is well formed and that the table can
// identify something.
func (t Table) Validate() error {
	if len(t.NationalID) == 0 && len(t.FullName) == 0 && len(t.GivenName) == 0 {
		return fmt.Errorf("path table has no national_id, full_name or given_name paths")
	}

	sections := map[string][]string{
		"national_id":       t.NationalID,
		"full_name":         t.FullName,
		"given_name":        t.GivenName,
		"paternal_surname":  t.PaternalSurname,
		"maternal_surname":  t.MaternalSurname,
		"secondary_id":      t.SecondaryID,
		"birth_date":        t.BirthDate,
		"document_id":       t.DocumentID,
		"organization_name": t.OrganizationName,
	}
	for section, paths := range sections {
		for _, p := range paths {
			if !jsonpath.Valid(p) {
				return fmt.Errorf("invalid path %q in %s", p, section)
			}
		}
	}

	for i, s := range t.SurnameSources {
		if !jsonpath.Valid(s.Name) || !jsonpath.Valid(s.Paternal) {
			return fmt.Errorf("surname_sources[%d]: name and paternal paths are required", i)
		}
		if s.Maternal != "" && !jsonpath.Valid(s.Maternal) {
			return fmt.Errorf("surname_sources[%d]: invalid maternal path %q", i, s.Maternal)
		}
	}
	return nil
}

func (t Table) clone() Table {
	return Table{
		NationalID:       slices.Clone(t.NationalID),
		FullName:         slices.Clone(t.FullName),
		GivenName:        slices.Clone(t.GivenName),
		PaternalSurname:  slices.Clone(t.PaternalSurname),
		MaternalSurname:  slices.Clone(t.MaternalSurname),
		SurnameSources:   slices.Clone(t.SurnameSources),
		SecondaryID:      slices.Clone(t.SecondaryID),
		BirthDate:        slices.Clone(t.BirthDate),
		DocumentID:       slices.Clone(t.DocumentID),
		OrganizationName: slices.Clone(t.OrganizationName),
	}
}
