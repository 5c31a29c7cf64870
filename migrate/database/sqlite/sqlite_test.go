package sqlite

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/cli/migrate/database"
	dt "github.com/tidemark/cli/migrate/database/testing"
	"github.com/tidemark/cli/pkg/errors"
)

func TestSqlite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db, a, err := database.Open("sqlite::memory:", logger)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", a.Dialect().Name())
	dt.Test(t, a)
}

func TestSqlite_missingTableOutsideDryRun(t *testing.T) {
	db, a, err := database.Open("sqlite::memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = a.VersionLog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsKind(errors.KindConnection, err))
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"sqlite://migrations.db", "migrations.db"},
		{"sqlite:///var/lib/app.db", "/var/lib/app.db"},
		{"sqlite::memory:", ":memory:"},
		{"sqlite://", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, FilePath(tt.dsn))
		})
	}
}

func TestSqlite_Quoting(t *testing.T) {
	s := &Sqlite{}
	assert.Equal(t, `"phinxlog"`, s.QuoteTableName("phinxlog"))
	assert.Equal(t, `"main"."phinxlog"`, s.QuoteTableName("main.phinxlog"))
	assert.Equal(t, `"odd""name"`, s.QuoteTableName(`odd"name`))
	assert.Equal(t, `'it''s'`, s.QuoteLiteral("it's"))
}

func TestSqlite_qualifiedSchemaTable(t *testing.T) {
	db, a, err := database.Open("sqlite::memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionMigrationTable: "main.schema_log"}))
	assert.Equal(t, `"main"."schema_log"`, a.QuotedSchemaTableName())

	ctx := context.Background()
	_, err = a.Execute(ctx, a.Dialect().CreateSchemaTableSQL(a.QuotedSchemaTableName()))
	require.NoError(t, err)
	_, err = a.Execute(ctx, `INSERT INTO "schema_log" (version) VALUES (1)`)
	require.NoError(t, err)

	versions, err := a.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, versions)
}
