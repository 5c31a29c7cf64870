package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tidemark/cli/pkg/errors"
)

// Entry is one row of the schema-log table. Columns are passed through as
// the connection reported them.
type Entry map[string]interface{}

func (e Entry) Version() string {
	v, _ := versionKey(e["version"])
	return v
}

// StartTime returns the start_time column, or the zero time when the column
// is missing or cannot be read as a timestamp.
func (e Entry) StartTime() time.Time {
	return timeColumn(e["start_time"])
}

func (e Entry) EndTime() time.Time {
	return timeColumn(e["end_time"])
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func timeColumn(v interface{}) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func (e Entry) Breakpoint() bool {
	switch v := e["breakpoint"].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// VersionLog wraps the applied migrations and keeps an index of versions in
// the order the schema-log query returned them.
type VersionLog struct {
	index   []string
	entries map[string]Entry
}

func NewVersionLog() *VersionLog {
	return &VersionLog{
		index:   make([]string, 0),
		entries: make(map[string]Entry),
	}
}

// Put stores e under version. A version seen before keeps its position and
// its entry is replaced. Put reports whether the version was already present.
func (l *VersionLog) Put(version string, e Entry) bool {
	_, dup := l.entries[version]
	if !dup {
		l.index = append(l.index, version)
	}
	l.entries[version] = e
	return dup
}

func (l *VersionLog) Len() int {
	return len(l.index)
}

func (l *VersionLog) Versions() []string {
	out := make([]string, len(l.index))
	copy(out, l.index)
	return out
}

func (l *VersionLog) Get(version string) (Entry, bool) {
	e, ok := l.entries[version]
	return e, ok
}

func (l *VersionLog) Has(version string) bool {
	_, ok := l.entries[version]
	return ok
}

// Entries returns the entries in log order.
func (l *VersionLog) Entries() []Entry {
	out := make([]Entry, 0, len(l.index))
	for _, v := range l.index {
		out = append(out, l.entries[v])
	}
	return out
}

func orderClause(versionOrder string) (string, error) {
	var op errors.Op = "database.orderClause"
	switch versionOrder {
	case "", VersionOrderCreationTime:
		return "version ASC", nil
	case VersionOrderExecutionTime:
		return "start_time ASC, version ASC", nil
	}
	return "", errors.E(op, errors.KindConfiguration,
		fmt.Errorf("invalid version_order configuration option %q, valid options are %s, %s",
			versionOrder, VersionOrderCreationTime, VersionOrderExecutionTime))
}

// VersionLog reads the schema-log table and returns its rows keyed by
// version, ordered by the configured version_order.
//
// In dry-run mode the table may not exist yet, so a failing query yields an
// empty log instead of an error.
func (a *Adapter) VersionLog(ctx context.Context) (*VersionLog, error) {
	var op errors.Op = "database.Adapter.VersionLog"
	clause, err := orderClause(a.stringOption(OptionVersionOrder))
	if err != nil {
		return nil, errors.E(op, err)
	}
	if a.conn == nil {
		return nil, ErrNoConnection
	}

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", a.QuotedSchemaTableName(), clause)
	suppressFailure := a.dryRun
	rows, err := a.conn.Query(ctx, query)
	if err != nil {
		if !suppressFailure {
			return nil, err
		}
		suppressed := errors.E(op, errors.KindDryRunSuppressed, err)
		a.logger.WithError(suppressed).WithField("table", a.SchemaTableName()).Debug("dry run: reading version log failed, assuming no applied migrations")
		return NewVersionLog(), nil
	}

	log := NewVersionLog()
	for i, row := range rows {
		version, ok := versionKey(row["version"])
		if !ok {
			return nil, errors.E(op, errors.KindInternal, fmt.Errorf("row %d of %s has no usable version column", i, a.SchemaTableName()))
		}
		if dup := log.Put(version, Entry(row)); dup {
			a.logger.WithFields(logrus.Fields{
				"version": version,
				"table":   a.SchemaTableName(),
			}).Warn("duplicate version in schema log, keeping the last row")
		}
	}
	return log, nil
}

// Versions returns the applied versions in log order.
func (a *Adapter) Versions(ctx context.Context) ([]string, error) {
	log, err := a.VersionLog(ctx)
	if err != nil {
		return nil, err
	}
	return log.Versions(), nil
}

func versionKey(v interface{}) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case []byte:
		return string(v), len(v) > 0
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return fmt.Sprint(v), true
}
