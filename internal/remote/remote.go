// Package remote defines the contract with the hosted data and auth service.
// Two backends satisfy it: rest (the hosted service) and sqlstore (an
// embedded SQL stand-in for development and tests).
package remote

import (
	"context"
)

// Table names a collection on the data service.
type Table string

const (
	TableTasks       Table = "tasks"
	TableProjects    Table = "projects"
	TableUsers       Table = "users"
	TableTimeEntries Table = "time_entries"
)

// Tables lists every collection the dashboard mirrors.
func Tables() []Table {
	return []Table{TableTasks, TableProjects, TableUsers, TableTimeEntries}
}

// Valid reports whether t is a known collection.
func (t Table) Valid() bool {
	for _, known := range Tables() {
		if t == known {
			return true
		}
	}
	return false
}

// Filter is an equality predicate on a single column.
type Filter struct {
	Column string
	Value  any
}

// Eq returns a filter matching rows whose column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// DataService is the table-style CRUD surface of the hosted service. Every
// operation returns the affected rows.
type DataService interface {
	Select(ctx context.Context, table Table, filters ...Filter) ([]Row, error)
	Insert(ctx context.Context, table Table, rows []Row) ([]Row, error)
	Update(ctx context.Context, table Table, patch Row, filters ...Filter) ([]Row, error)
	Delete(ctx context.Context, table Table, filters ...Filter) ([]Row, error)
}

// AuthService manages the user session on the hosted service.
type AuthService interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)
	// OnAuthStateChange registers fn for session changes and returns a
	// function that removes it.
	OnAuthStateChange(fn AuthListener) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignUp creates an account. The returned session is nil when the
	// service requires email confirmation first.
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// Backend bundles the two services with a release function.
type Backend struct {
	Data  DataService
	Auth  AuthService
	close func() error
}

// NewBackend creates a Backend. closeFn may be nil.
func NewBackend(data DataService, auth AuthService, closeFn func() error) *Backend {
	return &Backend{Data: data, Auth: auth, close: closeFn}
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}
