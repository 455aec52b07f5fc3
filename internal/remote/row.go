package remote

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Row is a record as exchanged with the data service: column name to a
// JSON-compatible value.
type Row map[string]any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the column as a string. Missing and null columns yield "".
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// OptionalString returns nil for missing, null and empty columns.
func (r Row) OptionalString(column string) *string {
	s := r.String(column)
	if s == "" {
		return nil
	}
	return &s
}

// Float returns the column as a float64, 0 when missing or unparsable.
func (r Row) Float(column string) float64 {
	switch v := r[column].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(v), 64)
		return f
	default:
		return 0
	}
}

// Int returns the column rounded down to an int.
func (r Row) Int(column string) int {
	return int(r.Float(column))
}

// OptionalInt returns nil for missing and null columns.
func (r Row) OptionalInt(column string) *int {
	if v, ok := r[column]; !ok || v == nil {
		return nil
	}
	i := r.Int(column)
	return &i
}

// Time parses an RFC3339 column. Missing, null and malformed values yield nil.
func (r Row) Time(column string) *time.Time {
	switch v := r[column].(type) {
	case time.Time:
		return &v
	case nil:
		return nil
	}
	s := r.String(column)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Strings returns a list column. JSON arrays arrive as []any, SQL text
// columns as an encoded JSON string.
func (r Row) Strings(column string) []string {
	switch v := r[column].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string, []byte:
		var out []string
		if err := json.Unmarshal([]byte(r.String(column)), &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}
