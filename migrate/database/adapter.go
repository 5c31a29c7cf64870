package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tidemark/cli/pkg/errors"
)

// ErrNoConnection is returned by every operation that needs the database
// while no connection has been configured.
var ErrNoConnection = errors.E(errors.Op("database.Adapter"), errors.KindConnection, "database: no connection configured, set the connection option first")

// SchemaAdapter is what the migration runner and the state store need from
// an adapter.
type SchemaAdapter interface {
	Execute(ctx context.Context, sql string) (int64, error)
	QuoteValue(v interface{}) (interface{}, error)
	VersionLog(ctx context.Context) (*VersionLog, error)
	SchemaTableName() string
	QuotedSchemaTableName() string
	Dialect() Dialect
	IsDryRun() bool
}

var _ SchemaAdapter = (*Adapter)(nil)

// Adapter is the single surface migration commands use to talk to a
// database. It is meant to be used from one goroutine at a time.
type Adapter struct {
	options map[string]interface{}
	conn    Conn
	dialect Dialect
	dryRun  bool

	logger *logrus.Logger
}

// New returns an adapter for dialect with no options and no connection.
func New(dialect Dialect, logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Adapter{
		options: map[string]interface{}{},
		dialect: dialect,
		logger:  logger,
	}
}

// SetOptions merges opts into the adapter's options, key by key. Deprecated
// keys are translated first and a warning is logged for each of them. A
// connection that does not implement Conn is rejected and nothing is merged.
func (a *Adapter) SetOptions(opts map[string]interface{}) error {
	var op errors.Op = "database.Adapter.SetOptions"
	canonical, notices := NormalizeOptions(opts)

	var conn Conn
	v, hasConn := canonical[OptionConnection]
	if hasConn && v != nil {
		c, ok := v.(Conn)
		if !ok {
			return errors.E(op, errors.KindConfiguration, fmt.Errorf("option %q must be a database connection, got %T", OptionConnection, v))
		}
		conn = c
	}

	for _, n := range notices {
		a.logger.WithFields(logrus.Fields{
			"option":        n.Option,
			"deprecated_in": n.DeprecatedIn.String(),
			"replacement":   n.Replacement,
		}).Warn(n.String())
	}

	for k, v := range canonical {
		a.options[k] = v
	}
	if hasConn {
		a.conn = conn
	}
	return nil
}

// Options returns the adapter's live option map. Change it through
// SetOptions.
func (a *Adapter) Options() map[string]interface{} {
	return a.options
}

// SchemaTableName returns the name of the table holding the migration log.
func (a *Adapter) SchemaTableName() string {
	if name := a.stringOption(OptionMigrationTable); name != "" {
		return name
	}
	return DefaultMigrationTable
}

func (a *Adapter) SetSchemaTableName(name string) {
	a.options[OptionMigrationTable] = name
}

func (a *Adapter) SetDryRun(dryRun bool) {
	a.dryRun = dryRun
}

func (a *Adapter) IsDryRun() bool {
	return a.dryRun
}

func (a *Adapter) Dialect() Dialect {
	return a.dialect
}

func (a *Adapter) Logger() *logrus.Logger {
	return a.logger
}

// QuotedSchemaTableName is SchemaTableName quoted for the adapter's dialect.
func (a *Adapter) QuotedSchemaTableName() string {
	name := a.SchemaTableName()
	if a.dialect == nil {
		return name
	}
	return a.dialect.QuoteTableName(name)
}

func (a *Adapter) stringOption(key string) string {
	v, ok := a.options[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
