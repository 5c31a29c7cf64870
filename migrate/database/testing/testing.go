// Package testing has the behaviour every database driver must show once
// wired into an adapter. Driver tests call Test with an adapter connected to
// an empty database.
package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark/cli/migrate/database"
)

// Test runs tests against database implementations. It creates and fills a
// schema-log table named tidemark_suite_log.
func Test(t *testing.T, a *database.Adapter) {
	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionMigrationTable: "tidemark_suite_log"}))
	TestCreateSchemaTable(t, a)
	TestQuoteValueRoundTrip(t, a)
	TestVersionLogOrdering(t, a)
	TestDryRun(t, a)
}

func TestCreateSchemaTable(t *testing.T, a *database.Adapter) {
	ctx := context.Background()
	_, err := a.Execute(ctx, a.Dialect().CreateSchemaTableSQL(a.QuotedSchemaTableName())+";;")
	require.NoError(t, err)
	// running it twice must be harmless
	_, err = a.Execute(ctx, a.Dialect().CreateSchemaTableSQL(a.QuotedSchemaTableName())+";")
	require.NoError(t, err)

	log, err := a.VersionLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, log.Len())
}

func TestQuoteValueRoundTrip(t *testing.T, a *database.Adapter) {
	ctx := context.Background()
	name := `it's a "migration"`
	insert(t, a, 1, name, "2020-01-01 00:00:00")

	log, err := a.VersionLog(ctx)
	require.NoError(t, err)
	e, ok := log.Get("1")
	require.True(t, ok)
	assert.Equal(t, name, e["migration_name"])
	assert.False(t, e.Breakpoint())

	n, err := a.Execute(ctx, fmt.Sprintf("DELETE FROM %s WHERE version = 1;", a.QuotedSchemaTableName()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// TestVersionLogOrdering inserts migrations whose execution order differs
// from their creation order.
func TestVersionLogOrdering(t *testing.T, a *database.Adapter) {
	ctx := context.Background()
	insert(t, a, 20130508120534, "Second", "2013-05-08 12:00:00")
	insert(t, a, 20120508120534, "First", "2014-01-01 00:00:00")
	insert(t, a, 20140508120534, "Third", "2012-01-01 00:00:00")

	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionVersionOrder: database.VersionOrderCreationTime}))
	got, err := a.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20120508120534", "20130508120534", "20140508120534"}, got)

	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionVersionOrder: database.VersionOrderExecutionTime}))
	got, err = a.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20140508120534", "20130508120534", "20120508120534"}, got)

	require.NoError(t, a.SetOptions(map[string]interface{}{database.OptionVersionOrder: database.VersionOrderCreationTime}))
}

func TestDryRun(t *testing.T, a *database.Adapter) {
	ctx := context.Background()
	a.SetDryRun(true)
	defer a.SetDryRun(false)

	before, err := a.Versions(ctx)
	require.NoError(t, err)
	_, err = a.Execute(ctx, fmt.Sprintf("DELETE FROM %s", a.QuotedSchemaTableName()))
	require.NoError(t, err)
	after, err := a.Versions(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	table := a.SchemaTableName()
	a.SetSchemaTableName("tidemark_missing_log")
	defer a.SetSchemaTableName(table)
	log, err := a.VersionLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, log.Len())
}

func insert(t *testing.T, a *database.Adapter, version int64, name, startTime string) {
	t.Helper()
	quotedName, err := a.QuoteValue(name)
	require.NoError(t, err)
	quotedStart, err := a.QuoteValue(startTime)
	require.NoError(t, err)
	breakpoint, err := a.QuoteValue(false)
	require.NoError(t, err)
	_, err = a.Execute(context.Background(), fmt.Sprintf(
		"INSERT INTO %s (version, migration_name, start_time, end_time, breakpoint) VALUES (%d, %v, %v, %v, %v);",
		a.QuotedSchemaTableName(), version, quotedName, quotedStart, quotedStart, breakpoint))
	require.NoError(t, err)
}
