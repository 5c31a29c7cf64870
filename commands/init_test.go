package commands

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/cli"
)

func TestInitOptions_Run(t *testing.T) {
	type fields struct {
		Config  cli.Config
		InitDir string
	}
	tests := []struct {
		name       string
		fields     fields
		existing   string
		wantConfig string
		wantDir    string
		assertErr  require.ErrorAssertionFunc
	}{
		{
			"relative directory",
			fields{
				Config:  cli.Config{DatabaseURL: "sqlite://app.db"},
				InitDir: "app",
			},
			"",
			"database_url: sqlite://app.db\n",
			"/work/app",
			require.NoError,
		},
		{
			"absolute directory with settings",
			fields{
				Config:  cli.Config{DatabaseURL: "postgres://localhost/app", MigrationTable: "schema_log", VersionOrder: "execution_time"},
				InitDir: "/srv/app",
			},
			"",
			"database_url: postgres://localhost/app\nmigration_table: schema_log\nversion_order: execution_time\n",
			"/srv/app",
			require.NoError,
		},
		{
			"directory name required without a terminal",
			fields{},
			"",
			"",
			"",
			require.Error,
		},
		{
			"invalid version order",
			fields{
				Config:  cli.Config{VersionOrder: "alphabetical"},
				InitDir: "app",
			},
			"",
			"",
			"",
			require.Error,
		},
		{
			"config already exists",
			fields{InitDir: "app"},
			"/work/app/config.yaml",
			"",
			"",
			require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			fs := afero.NewMemMapFs()
			if tt.existing != "" {
				require.NoError(t, afero.WriteFile(fs, tt.existing, []byte("database_url: x\n"), 0644))
			}
			ec := &cli.ExecutionContext{
				Logger:             logger,
				Fs:                 fs,
				ExecutionDirectory: "/work",
			}
			o := &InitOptions{
				EC:      ec,
				Config:  tt.fields.Config,
				InitDir: tt.fields.InitDir,
			}
			err := o.Run()
			tt.assertErr(t, err)
			if tt.wantDir == "" {
				return
			}
			assert.Equal(t, tt.wantDir, ec.ExecutionDirectory)
			b, err := afero.ReadFile(fs, filepath.Join(tt.wantDir, cli.ConfigFile))
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, string(b))
		})
	}
}
