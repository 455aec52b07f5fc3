package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"insightpm/internal/errors"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HandleDatabaseError classifies a driver error. Errors that are already
// structured pass through unchanged.
func HandleDatabaseError(operation string, err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError(operation, "context deadline")
	case errors.IsAppError(err):
		return err
	default:
		return errors.NewDatabaseError(operation, err)
	}
}

// ExecuteWithRowsAffected runs a statement and reports how many rows it touched.
func ExecuteWithRowsAffected(ctx context.Context, db querier, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, HandleDatabaseError("execute statement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, HandleDatabaseError("count affected rows", err)
	}
	return n, nil
}

// QuerySingle scans one row. A missing row becomes a not-found error naming
// entityType and id.
func QuerySingle[T any](ctx context.Context, db querier, query string, scan func(Scanner) (*T, error), entityType string, id string, args ...any) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError(entityType, id)
	}
	if err != nil {
		return nil, HandleDatabaseError("scan "+entityType, err)
	}
	return v, nil
}

// QueryMultiple runs query and hands the open cursor to scan.
func QueryMultiple[T any](ctx context.Context, db querier, query string, scan func(Rows) ([]T, error), entityType string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleDatabaseError("query "+entityType, err)
	}
	defer rows.Close()

	out, err := scan(rows)
	if err != nil {
		return nil, HandleDatabaseError("scan "+entityType, err)
	}
	return out, nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}
