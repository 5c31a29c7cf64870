package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/cli/migrate/database"
	_ "github.com/tidemark/cli/migrate/database/sqlite"
)

const projectDir = "/project"

func newTestContext(t *testing.T, files map[string]string) (*ExecutionContext, *test.Hook) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(projectDir, 0755))
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(projectDir, name), []byte(content), 0644))
	}
	logger, hook := test.NewNullLogger()
	return &ExecutionContext{
		Logger:             logger,
		Fs:                 fs,
		Viper:              viper.New(),
		ExecutionDirectory: projectDir,
		Envfile:            DefaultEnvfile,
	}, hook
}

func TestExecutionContext_readConfig(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		env         map[string]string
		wantConfig  *Config
		wantOptions map[string]interface{}
		wantErr     bool
		assertErr   require.ErrorAssertionFunc
	}{
		{
			"reads config file",
			map[string]string{
				"config.yaml": "database_url: sqlite://app.db\nmigration_table: schema_log\nversion_order: execution_time\n",
			},
			nil,
			&Config{DatabaseURL: "sqlite://app.db", MigrationTable: "schema_log", VersionOrder: "execution_time"},
			map[string]interface{}{"migration_table": "schema_log", "version_order": "execution_time"},
			false,
			require.NoError,
		},
		{
			"deprecated key is kept for the adapter",
			map[string]string{
				"config.yaml": "database_url: sqlite://app.db\ndefault_migration_table: legacy_log\n",
			},
			nil,
			&Config{DatabaseURL: "sqlite://app.db", MigrationTable: "legacy_log"},
			map[string]interface{}{"default_migration_table": "legacy_log"},
			false,
			require.NoError,
		},
		{
			"env overrides file",
			map[string]string{
				"config.yaml": "database_url: sqlite://app.db\nmigration_table: from_file\n",
			},
			map[string]string{"TIDEMARK_MIGRATION_TABLE": "from_env"},
			&Config{DatabaseURL: "sqlite://app.db", MigrationTable: "from_env"},
			map[string]interface{}{"migration_table": "from_env"},
			false,
			require.NoError,
		},
		{
			"env only, no config file",
			nil,
			map[string]string{"TIDEMARK_DATABASE_URL": "postgres://localhost/app"},
			&Config{DatabaseURL: "postgres://localhost/app"},
			map[string]interface{}{},
			false,
			require.NoError,
		},
		{
			"database url missing",
			map[string]string{"config.yaml": "migration_table: x\n"},
			nil,
			nil,
			nil,
			true,
			func(tt require.TestingT, err error, i ...interface{}) {
				require.Equal(tt, ErrDatabaseURLNotSet, err)
			},
		},
		{
			"broken yaml",
			map[string]string{"config.yaml": "database_url: [\n"},
			nil,
			nil,
			nil,
			true,
			require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			ec, _ := newTestContext(t, tt.files)
			err := ec.readConfig()
			tt.assertErr(t, err)
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.wantConfig, ec.Config)
			assert.Equal(t, tt.wantOptions, ec.Options)
		})
	}
}

func TestExecutionContext_Validate_loadsEnvfile(t *testing.T) {
	ec, _ := newTestContext(t, map[string]string{
		".env": "TIDEMARK_DATABASE_URL=sqlite://from-envfile.db\n",
	})
	// restored to unset once the test ends
	t.Setenv("TIDEMARK_DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("TIDEMARK_DATABASE_URL"))
	require.NoError(t, ec.Validate())
	assert.Equal(t, "sqlite://from-envfile.db", ec.Config.DatabaseURL)
}

func TestExecutionContext_Validate_missingCustomEnvfile(t *testing.T) {
	ec, _ := newTestContext(t, nil)
	ec.Envfile = "staging.env"
	assert.Error(t, ec.Validate())
}

func TestExecutionContext_WriteConfig(t *testing.T) {
	ec, _ := newTestContext(t, nil)
	require.NoError(t, ec.WriteConfig(&Config{DatabaseURL: "sqlite://app.db", VersionOrder: "creation_time"}))

	b, err := afero.ReadFile(ec.Fs, filepath.Join(projectDir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "database_url: sqlite://app.db\nversion_order: creation_time\n", string(b))

	require.NoError(t, ec.readConfig())
	assert.Equal(t, "sqlite://app.db", ec.Config.DatabaseURL)
}

func TestExecutionContext_OpenDatabase(t *testing.T) {
	ec, hook := newTestContext(t, map[string]string{
		"config.yaml": "database_url: \"sqlite::memory:\"\ndefault_migration_table: legacy_log\ndry_run: true\n",
	})
	require.NoError(t, ec.readConfig())
	require.NoError(t, ec.OpenDatabase())
	defer ec.Close()

	assert.Equal(t, "legacy_log", ec.Adapter.SchemaTableName())
	assert.True(t, ec.Adapter.IsDryRun())
	assert.NotNil(t, ec.MigrationsStateStore)

	var notices []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			notices = append(notices, e)
		}
	}
	require.Len(t, notices, 1)
	assert.Equal(t, database.OptionDefaultMigrationTable, notices[0].Data["option"])

	require.NoError(t, ec.Close())
	assert.Nil(t, ec.DB)
}

func TestExecutionContext_OpenDatabase_unknownScheme(t *testing.T) {
	ec, _ := newTestContext(t, map[string]string{"config.yaml": "database_url: oracle://db\n"})
	require.NoError(t, ec.readConfig())
	assert.Error(t, ec.OpenDatabase())
}
