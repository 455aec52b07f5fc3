package sqlstore

import (
	"insightpm/internal/remote"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// ScanRow scans one record whose select list is exactly columns.
func ScanRow(scanner Scanner, columns []column) (remote.Row, error) {
	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(remote.Row, len(columns))
	for i, c := range columns {
		v, err := decodeValue(c, raw[i])
		if err != nil {
			return nil, err
		}
		row[c.name] = v
	}
	return row, nil
}

// ScanRows scans every remaining record.
func ScanRows(rows Rows, columns []column) ([]remote.Row, error) {
	out := []remote.Row{}
	for rows.Next() {
		row, err := ScanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func rowScanner(columns []column) func(Rows) ([]remote.Row, error) {
	return func(rows Rows) ([]remote.Row, error) {
		return ScanRows(rows, columns)
	}
}
