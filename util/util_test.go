package util

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvName(t *testing.T) {
	assert.Equal(t, "TIDEMARK_DATABASE_URL", EnvName("database_url"))
	assert.Equal(t, "TIDEMARK_DRY_RUN", EnvName("dry-run"))
}

func TestBindPFlag(t *testing.T) {
	v := viper.New()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("migration-table", "", "schema-log table")
	BindPFlag(v, "migration_table", f.Lookup("migration-table"))

	require.NoError(t, f.Parse([]string{"--migration-table", "custom_log"}))
	assert.Equal(t, "custom_log", v.GetString("migration_table"))
	assert.Contains(t, f.Lookup("migration-table").Usage, `(env "TIDEMARK_MIGRATION_TABLE")`)
}

func TestNewTableWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	table := NewTableWriter(buf)
	table.SetHeader([]string{"VERSION", "NAME"})
	table.Append([]string{"1", "Init"})
	table.Render()
	assert.Contains(t, buf.String(), "VERSION")
	assert.Contains(t, buf.String(), "Init")
}
