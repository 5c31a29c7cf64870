package database

import (
	"fmt"
	"reflect"
)

// SQLNull is what QuoteValue returns for nil.
const SQLNull = "null"

// QuoteValue prepares v for literal use in SQL. Numbers are returned as they
// are, booleans become 1 or 0, nil becomes SQLNull and everything else is
// quoted by the connection. Named types are classified by their underlying
// kind, so a time.Duration stays a number and a named bool becomes 1 or 0.
func (a *Adapter) QuoteValue(v interface{}) (interface{}, error) {
	if v == nil {
		return SQLNull, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return v, nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	if a.conn == nil {
		return nil, ErrNoConnection
	}
	return a.conn.Quote(stringify(v))
}

func stringify(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
