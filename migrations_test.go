package glowguide

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql"} {
		files, err := fs.Glob(Migrations, "migrations/"+dialect+"/*.sql")
		require.NoError(t, err)
		require.NotEmpty(t, files, dialect)

		for _, f := range files {
			b, err := fs.ReadFile(Migrations, f)
			require.NoError(t, err)
			sql := string(b)
			assert.True(t, strings.HasPrefix(sql, "-- +goose Up"), f)
			assert.Contains(t, sql, "-- +goose Down", f)
			assert.Contains(t, sql, "analyses", f)
			assert.Contains(t, sql, "user_subscriptions", f)
		}
	}
}
