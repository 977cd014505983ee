package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsValid(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())
	assert.NotEmpty(t, table.NationalID)
	assert.NotEmpty(t, table.FullName)
	assert.NotEmpty(t, table.SurnameSources)
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "minimal", yaml: "national_id: [curp]\n"},
		{name: "nothing identifying", yaml: "secondary_id: [rfc]\n", wantErr: true},
		{name: "bad path", yaml: "national_id: ['a..b']\n", wantErr: true},
		{name: "surname source without paternal", yaml: "full_name: [x]\nsurname_sources:\n  - name: x\n", wantErr: true},
		{name: "not yaml", yaml: "national_id: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.yml")
	require.NoError(t, os.WriteFile(path, []byte("national_id: [registro.clave]\n"), 0644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"registro.clave"}, table.NationalID)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
