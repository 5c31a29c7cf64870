package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/migrate/database/stub"
	"github.com/tidemark/cli/pkg/errors"
)

func TestAdapter_VersionLog(t *testing.T) {
	type fields struct {
		options map[string]interface{}
		rows    []database.Row
	}
	tests := []struct {
		name         string
		fields       fields
		wantQuery    string
		wantVersions []string
		wantErr      bool
		assertErr    require.ErrorAssertionFunc
	}{
		{
			"creation time ordering by default",
			fields{
				nil,
				[]database.Row{
					{"version": "20120508120534", "key": "value"},
					{"version": "20130508120534", "key": "value"},
				},
			},
			`SELECT * FROM "phinxlog" ORDER BY version ASC`,
			[]string{"20120508120534", "20130508120534"},
			false,
			require.NoError,
		},
		{
			"explicit creation time",
			fields{
				map[string]interface{}{"version_order": "creation_time", "migration_table": "log"},
				[]database.Row{{"version": "1"}},
			},
			`SELECT * FROM "log" ORDER BY version ASC`,
			[]string{"1"},
			false,
			require.NoError,
		},
		{
			"execution time keeps query order",
			fields{
				map[string]interface{}{"version_order": "execution_time"},
				[]database.Row{
					{"version": "20130508120534", "start_time": "2013-01-01 00:00:00"},
					{"version": "20120508120534", "start_time": "2014-01-01 00:00:00"},
				},
			},
			`SELECT * FROM "phinxlog" ORDER BY start_time ASC, version ASC`,
			[]string{"20130508120534", "20120508120534"},
			false,
			require.NoError,
		},
		{
			"integer versions are keyed as strings",
			fields{
				nil,
				[]database.Row{{"version": int64(20120508120534)}, {"version": []byte("20130508120534")}},
			},
			`SELECT * FROM "phinxlog" ORDER BY version ASC`,
			[]string{"20120508120534", "20130508120534"},
			false,
			require.NoError,
		},
		{
			"invalid version order",
			fields{
				map[string]interface{}{"version_order": "alphabetical"},
				nil,
			},
			"",
			nil,
			true,
			func(tt require.TestingT, err error, i ...interface{}) {
				require.True(tt, errors.IsKind(errors.KindConfiguration, err))
				require.Contains(tt, err.Error(), "invalid version_order configuration option")
				require.Contains(tt, err.Error(), "alphabetical")
				require.Contains(tt, err.Error(), "creation_time")
				require.Contains(tt, err.Error(), "execution_time")
			},
		},
		{
			"row without version",
			fields{
				nil,
				[]database.Row{{"migration_name": "Init"}},
			},
			`SELECT * FROM "phinxlog" ORDER BY version ASC`,
			nil,
			true,
			func(tt require.TestingT, err error, i ...interface{}) {
				require.True(tt, errors.IsKind(errors.KindInternal, err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, conn := stub.New()
			conn.Rows = tt.fields.rows
			if tt.fields.options != nil {
				require.NoError(t, a.SetOptions(tt.fields.options))
			}
			got, err := a.VersionLog(context.Background())
			tt.assertErr(t, err)
			if tt.wantQuery == "" {
				assert.Empty(t, conn.Queried)
			} else {
				assert.Equal(t, []string{tt.wantQuery}, conn.Queried)
			}
			if tt.wantErr {
				return
			}
			assert.Equal(t, tt.wantVersions, got.Versions())
			for i, e := range got.Entries() {
				assert.Equal(t, database.Entry(tt.fields.rows[i]), e)
			}
		})
	}
}

func TestAdapter_VersionLog_duplicateVersionsKeepLastRow(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a := database.New(stub.Dialect{}, logger)
	conn := &stub.Conn{Rows: []database.Row{
		{"version": "1", "migration_name": "first"},
		{"version": "2", "migration_name": "second"},
		{"version": "1", "migration_name": "again"},
	}}
	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionConnection: conn}))

	got, err := a.VersionLog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got.Versions())
	e, ok := got.Get("1")
	require.True(t, ok)
	assert.Equal(t, "again", e["migration_name"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "1", hook.LastEntry().Data["version"])
}

func TestAdapter_VersionLog_queryFailure(t *testing.T) {
	cause := fmt.Errorf(`relation "phinxlog" does not exist`)

	t.Run("propagated outside dry run", func(t *testing.T) {
		a, conn := stub.New()
		conn.QueryErr = cause
		_, err := a.VersionLog(context.Background())
		assert.Equal(t, cause, err)
	})

	t.Run("empty log in dry run", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		a := database.New(stub.Dialect{}, logger)
		conn := &stub.Conn{QueryErr: cause}
		require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionConnection: conn}))
		a.SetDryRun(true)

		got, err := a.VersionLog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, got.Len())
		assert.Len(t, conn.Queried, 1)

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
		logged, ok := hook.LastEntry().Data[logrus.ErrorKey].(error)
		require.True(t, ok)
		assert.True(t, errors.IsKind(errors.KindDryRunSuppressed, logged))
		assert.True(t, errors.Is(logged, cause))
	})

	t.Run("dry run still reads the log when it exists", func(t *testing.T) {
		a, conn := stub.New()
		conn.Rows = []database.Row{{"version": "7"}}
		a.SetDryRun(true)
		got, err := a.VersionLog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, got.Versions())
	})

	t.Run("no connection is not absorbed by dry run", func(t *testing.T) {
		a := database.New(stub.Dialect{}, nil)
		a.SetDryRun(true)
		_, err := a.VersionLog(context.Background())
		assert.Equal(t, database.ErrNoConnection, err)
	})
}

func TestAdapter_Versions(t *testing.T) {
	a, conn := stub.New()
	conn.Rows = []database.Row{{"version": "3"}, {"version": "5"}}
	got, err := a.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "5"}, got)
}

func TestEntry(t *testing.T) {
	e := database.Entry{
		"version":    int64(42),
		"start_time": "2021-03-04 05:06:07",
		"breakpoint": int64(1),
	}
	assert.Equal(t, "42", e.Version())
	assert.Equal(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC), e.StartTime())
	assert.True(t, e.Breakpoint())

	empty := database.Entry{}
	assert.True(t, empty.StartTime().IsZero())
	assert.False(t, empty.Breakpoint())
}
