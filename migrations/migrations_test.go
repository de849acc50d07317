package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/rentdesk", "pgx5://u:p@localhost:5432/rentdesk"},
		{"postgresql://u@db/rentdesk?sslmode=disable", "pgx5://u@db/rentdesk?sslmode=disable"},
		{"pgx5://already/converted", "pgx5://already/converted"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, driverURL(tt.in))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(FS(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %s", name)
		}
	}

	assert.Equal(t, ups, downs, "every up migration needs a down migration")
	assert.Len(t, ups, 9)
}
