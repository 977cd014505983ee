package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		repair  bool
		wantErr bool
		check   string
		want    string
	}{
		{name: "object", input: `{"a": {"b": 1}}`, check: "a.b", want: "1"},
		{name: "byte order mark", input: "\xef\xbb\xbf{\"a\": \"x\"}", check: "a", want: "x"},
		{name: "array", input: `[{"x": 1}]`, check: "0.x", want: "1"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "malformed", input: `{"a": 1,`, wantErr: true},
		{name: "malformed repaired", input: `{a: 'x', }`, repair: true, check: "a", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input), Options{Repair: tt.repair})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Get(tt.check).String())
		})
	}
}
