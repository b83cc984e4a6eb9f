package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		want        Config
		wantUnknown []string
		wantErr     bool
	}{
		{
			name: "empty uses defaults",
			data: "",
			want: DefaultConfig(),
		},
		{
			name: "all options",
			data: `
include_inherited: true
include_private: true
add_fields_to: class-attributes
remove_fields_from_members: true
strip_annotated: true
object_paths: [pkg.A, pkg.B]
`,
			want: Config{
				IncludeInherited:        true,
				IncludePrivate:          true,
				AddFieldsTo:             ClassAttributes,
				RemoveFieldsFromMembers: true,
				StripAnnotated:          true,
				ObjectPaths:             []string{"pkg.A", "pkg.B"},
			},
		},
		{
			name:        "unknown keys reported",
			data:        "strip_annotated: true\nzeta: 1\nalpha: x\n",
			want:        Config{AddFieldsTo: DocstringParameters, StripAnnotated: true},
			wantUnknown: []string{"alpha", "zeta"},
		},
		{
			name:    "invalid target",
			data:    "add_fields_to: docstring-returns\n",
			wantErr: true,
		},
		{
			name:    "not a mapping",
			data:    "- a\n- b\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unknown, err := DecodeConfig([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidOptions))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantUnknown, unknown)
		})
	}
}

func TestConfigWants(t *testing.T) {
	assert.True(t, DefaultConfig().wants("any.Path"))

	cfg := Config{ObjectPaths: []string{"pkg.A"}}
	assert.True(t, cfg.wants("pkg.A"))
	assert.False(t, cfg.wants("pkg.B"))
}
