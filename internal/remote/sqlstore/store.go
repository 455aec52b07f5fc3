// Package sqlstore is an embedded SQL stand-in for the hosted data and auth
// service. It serves development and tests through the same remote
// interfaces the REST client implements.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"insightpm/internal/errors"
	"insightpm/internal/remote"
	"insightpm/internal/remote/sqlstore/migrations"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// Options configures Open.
type Options struct {
	Driver         string
	DSN            string
	DirPermissions os.FileMode
	JWTSecret      string
	SessionTTL     time.Duration
	// HashCost is the bcrypt cost for new passwords; bcrypt.DefaultCost when zero.
	HashCost int
	Logger   *zap.Logger
}

// Store implements remote.DataService and remote.AuthService on database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger

	sessions remote.SessionHolder
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time

	stampMu   sync.Mutex
	lastStamp time.Time
}

var (
	_ remote.DataService = (*Store)(nil)
	_ remote.AuthService = (*Store)(nil)
)

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverSQLite
	}
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, errors.NewInvalidInputError("driver", opts.Driver, err.Error())
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.JWTSecret) == 0 {
		return nil, errors.NewInvalidInputError("jwt_secret", "", "secret is required to sign sessions")
	}

	if d.driver == DriverSQLite && opts.DSN != MemoryDSN && !strings.HasPrefix(opts.DSN, "file:") {
		perm := opts.DirPermissions
		if perm == 0 {
			perm = 0o755
		}
		if err := os.MkdirAll(filepath.Dir(opts.DSN), perm); err != nil {
			return nil, errors.NewDatabaseError("create database directory", err)
		}
	}

	db, err := sql.Open(d.driver, opts.DSN)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	if d.driver == DriverSQLite {
		// A single connection keeps :memory: databases shared and serialises writers.
		db.SetMaxOpenConns(1)
	}

	ph := migrations.QuestionMark
	if d.driver == DriverPostgres {
		ph = migrations.Dollar
	}
	if err := migrations.RunMigrations(ctx, db, ph); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{
		db:       db,
		dialect:  d,
		logger:   opts.Logger.Named("sqlstore"),
		secret:   []byte(opts.JWTSecret),
		ttl:      opts.SessionTTL,
		hashCost: opts.HashCost,
		now:      time.Now,
	}, nil
}

// Backend wraps the store as a remote.Backend.
func (s *Store) Backend() *remote.Backend {
	return remote.NewBackend(s, s, s.Close)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Select returns matching rows in insertion order.
func (s *Store) Select(ctx context.Context, table remote.Table, filters ...remote.Filter) ([]remote.Row, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	return s.selectRows(ctx, s.db, schema, filters)
}

// Insert stores rows, assigning ids where absent, and returns them as stored.
func (s *Store) Insert(ctx context.Context, table remote.Table, rows []remote.Row) ([]remote.Row, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []remote.Row{}, nil
	}

	var inserted []remote.Row
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, row := range rows {
			id := row.String(columnID)
			if id == "" {
				id = uuid.NewString()
			}
			names := []string{columnID, columnCreatedAt}
			args := []any{id, FormatTimeForDB(s.stamp())}
			for name, value := range row {
				if !writable(name) {
					continue
				}
				c, err := schema.column(name)
				if err != nil {
					return err
				}
				v, err := encodeValue(c, value)
				if err != nil {
					return errors.NewInvalidInputError(name, value, err.Error())
				}
				names = append(names, name)
				args = append(args, v)
			}

			query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				quoteIdent(string(table)), quoteIdents(names), placeholders(len(names)))
			if _, err := tx.ExecContext(ctx, s.dialect.rebind(query), args...); err != nil {
				return HandleDatabaseError("insert "+string(table), err)
			}

			stored, err := s.selectRows(ctx, tx, schema, []remote.Filter{remote.Eq(columnID, id)})
			if err != nil {
				return err
			}
			inserted = append(inserted, stored...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Update applies patch to matching rows and returns them as updated.
func (s *Store) Update(ctx context.Context, table remote.Table, patch remote.Row, filters ...remote.Filter) ([]remote.Row, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	for name, value := range patch {
		if !writable(name) {
			continue
		}
		c, err := schema.column(name)
		if err != nil {
			return nil, err
		}
		v, err := encodeValue(c, value)
		if err != nil {
			return nil, errors.NewInvalidInputError(name, value, err.Error())
		}
		sets = append(sets, quoteIdent(name)+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil, errors.NewInvalidInputError("patch", nil, "no writable columns")
	}

	var updated []remote.Row
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		targets, err := s.selectRows(ctx, tx, schema, filters)
		if err != nil {
			return err
		}
		for _, target := range targets {
			id := target.String(columnID)
			query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
				quoteIdent(string(table)), strings.Join(sets, ", "), quoteIdent(columnID))
			if _, err := ExecuteWithRowsAffected(ctx, tx, s.dialect.rebind(query), append(append([]any{}, args...), id)...); err != nil {
				return err
			}
			stored, err := s.selectRows(ctx, tx, schema, []remote.Filter{remote.Eq(columnID, id)})
			if err != nil {
				return err
			}
			updated = append(updated, stored...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		updated = []remote.Row{}
	}
	return updated, nil
}

// Delete removes matching rows and returns them as they were.
func (s *Store) Delete(ctx context.Context, table remote.Table, filters ...remote.Filter) ([]remote.Row, error) {
	schema, err := schemaFor(table)
	if err != nil {
		return nil, err
	}

	var deleted []remote.Row
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := s.selectRows(ctx, tx, schema, filters)
		if err != nil {
			return err
		}
		deleted = rows
		where, args, err := s.where(schema, filters)
		if err != nil {
			return err
		}
		query := fmt.Sprintf("DELETE FROM %s%s", quoteIdent(string(table)), where)
		_, err = ExecuteWithRowsAffected(ctx, tx, s.dialect.rebind(query), args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *Store) selectRows(ctx context.Context, q querier, schema tableSchema, filters []remote.Filter) ([]remote.Row, error) {
	where, args, err := s.where(schema, filters)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s, %s",
		quoteIdents(schema.names()), quoteIdent(string(schema.table)), where,
		quoteIdent(columnCreatedAt), quoteIdent(columnID))
	return QueryMultiple(ctx, q, s.dialect.rebind(query), rowScanner(schema.columns), string(schema.table), args...)
}

func (s *Store) where(schema tableSchema, filters []remote.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		c, err := schema.column(f.Column)
		if err != nil {
			return "", nil, err
		}
		if f.Value == nil {
			clauses = append(clauses, quoteIdent(c.name)+" IS NULL")
			continue
		}
		v, err := encodeValue(c, f.Value)
		if err != nil {
			return "", nil, errors.NewInvalidInputError(f.Column, f.Value, err.Error())
		}
		clauses = append(clauses, quoteIdent(c.name)+" = ?")
		args = append(args, v)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// stamp returns a creation time strictly after the previous one so that
// insertion order survives coarse clocks.
func (s *Store) stamp() time.Time {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
