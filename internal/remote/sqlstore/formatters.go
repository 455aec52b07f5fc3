package sqlstore

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"insightpm/internal/remote"
)

// timeLayout is RFC3339 with a fixed-width fraction so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats a time.Time value as RFC3339 string for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FormatTimePtrForDB formats a *time.Time value as RFC3339 string, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses an RFC3339 formatted time string from the database
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// encodeValue converts a row value to a driver value for the column.
func encodeValue(c column, v any) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	switch c.kind {
	case kindJSON:
		if s, ok := v.(string); ok && json.Valid([]byte(s)) {
			return s, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.name, err)
		}
		return string(b), nil
	case kindReal:
		return remote.Row{c.name: v}.Float(c.name), nil
	case kindInteger:
		return int64(math.Round(remote.Row{c.name: v}.Float(c.name))), nil
	default:
		if t, ok := v.(time.Time); ok {
			return FormatTimeForDB(t), nil
		}
		return remote.Row{c.name: v}.String(c.name), nil
	}
}

// decodeValue converts a scanned driver value to a JSON-compatible row value.
func decodeValue(c column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch c.kind {
	case kindJSON:
		var out any
		raw := v
		if b, ok := v.([]byte); ok {
			raw = string(b)
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("decode %s: unexpected %T", c.name, v)
		}
		if s == "" {
			return nil, nil
		}
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		return out, nil
	case kindReal:
		switch n := v.(type) {
		case []byte:
			return strconv.ParseFloat(string(n), 64)
		default:
			return remote.Row{c.name: v}.Float(c.name), nil
		}
	case kindInteger:
		switch n := v.(type) {
		case int64:
			return n, nil
		case []byte:
			return strconv.ParseInt(string(n), 10, 64)
		default:
			return int64(remote.Row{c.name: v}.Float(c.name)), nil
		}
	default:
		switch s := v.(type) {
		case []byte:
			return string(s), nil
		case time.Time:
			return FormatTimeForDB(s), nil
		default:
			return remote.Row{c.name: v}.String(c.name), nil
		}
	}
}
