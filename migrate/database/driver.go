// Package database holds the adapter every migration command talks to: the
// option store, value quoting, statement execution and the schema-log reader,
// together with the registry of database drivers that back it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	nurl "net/url"

	"github.com/sirupsen/logrus"

	"github.com/tidemark/cli/pkg/errors"
)

var driversMu sync.RWMutex
var drivers = make(map[string]Driver)

// Row is one result row keyed by column name.
type Row map[string]interface{}

// Conn is the capability the adapter needs from a live database connection.
//
// Implementations must not retry, reconnect or alter the errors reported by
// the database: the adapter hands them to its callers unchanged.
type Conn interface {
	// Exec runs query directly (no prepared statement) and returns the number
	// of affected rows.
	Exec(ctx context.Context, query string) (int64, error)

	// Quote returns value as a literal that is safe to splice into SQL,
	// including the surrounding quote characters.
	Quote(value string) (string, error)

	// Query runs query and returns every row as a column keyed map.
	Query(ctx context.Context, query string) ([]Row, error)
}

// Dialect captures the SQL differences between database engines.
type Dialect interface {
	Name() string
	QuoteTableName(name string) string
	QuoteLiteral(value string) string
	// CreateSchemaTableSQL returns the statement creating the schema-log table
	// if it does not exist yet. quotedTable is already quoted.
	CreateSchemaTableSQL(quotedTable string) string
}

// Driver is the interface every database driver must implement.
//
// How to implement a database driver?
//   1. Implement this interface.
//   2. Add a test that calls database/testing.go:Test()
//   3. Call Register in init().
//
// Guidelines:
//   * Don't try to correct user input. Don't assume things.
//     When in doubt, return an error and explain the situation to the user.
//   * All configuration input must come from the DSN handed to Open.
//     Don't os.Getenv().
type Driver interface {
	Dialect

	// Open returns a handle for dsn. The caller owns the handle and is
	// responsible for closing it.
	Open(dsn string) (*sql.DB, error)
}

// Open picks the driver registered for the scheme of url, opens a handle and
// returns it alongside an adapter wired to it.
func Open(url string, logger *logrus.Logger) (*sql.DB, *Adapter, error) {
	var op errors.Op = "database.Open"
	u, err := nurl.Parse(url)
	if err != nil {
		return nil, nil, errors.E(op, errors.KindBadInput, err)
	}
	if u.Scheme == "" {
		return nil, nil, errors.E(op, errors.KindBadInput, "database driver: invalid URL scheme")
	}

	driversMu.RLock()
	d, ok := drivers[u.Scheme]
	driversMu.RUnlock()
	if !ok {
		return nil, nil, errors.E(op, errors.KindBadInput, fmt.Errorf("database driver: unknown driver %s (forgotten import?)", u.Scheme))
	}

	db, err := d.Open(url)
	if err != nil {
		return nil, nil, errors.E(op, errors.KindConnection, err)
	}

	adapter := New(d, logger)
	if err := adapter.SetOptions(map[string]interface{}{OptionConnection: NewSQLConn(db, d)}); err != nil {
		return nil, nil, errors.E(op, err)
	}
	return db, adapter, nil
}

// Register makes a driver available under name. It panics if name is
// registered twice or driver is nil.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("database: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("database: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// List returns the registered driver names in sorted order.
func List() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for n := range drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
