package sqlstore

import (
	"fmt"

	"insightpm/internal/errors"
	"insightpm/internal/remote"
)

type columnKind int

const (
	kindText columnKind = iota
	kindReal
	kindInteger
	kindJSON
)

type column struct {
	name string
	kind columnKind
}

// tableSchema whitelists the columns a collection exposes.
type tableSchema struct {
	table   remote.Table
	columns []column
}

const (
	columnID        = "id"
	columnCreatedAt = "created_at"
)

var schemas = map[remote.Table]tableSchema{
	remote.TableTasks: {table: remote.TableTasks, columns: []column{
		{columnID, kindText},
		{"title", kindText},
		{"description", kindText},
		{"status", kindText},
		{"priority", kindText},
		{"assignee_id", kindText},
		{"project_id", kindText},
		{"start_date", kindText},
		{"due_date", kindText},
		{"estimated_time", kindReal},
		{"tags", kindJSON},
		{"completed_at", kindText},
		{"dependencies", kindJSON},
		{columnCreatedAt, kindText},
	}},
	remote.TableProjects: {table: remote.TableProjects, columns: []column{
		{columnID, kindText},
		{"name", kindText},
		{"description", kindText},
		{"status", kindText},
		{"progress", kindInteger},
		{"color", kindText},
		{"order", kindInteger},
		{columnCreatedAt, kindText},
	}},
	remote.TableUsers: {table: remote.TableUsers, columns: []column{
		{columnID, kindText},
		{"full_name", kindText},
		{"role", kindText},
		{"avatar_url", kindText},
		{"daily_capacity_hours", kindReal},
		{columnCreatedAt, kindText},
	}},
	remote.TableTimeEntries: {table: remote.TableTimeEntries, columns: []column{
		{columnID, kindText},
		{"task_id", kindText},
		{"user_id", kindText},
		{"hours", kindReal},
		{"date", kindText},
		{"description", kindText},
		{columnCreatedAt, kindText},
	}},
}

func schemaFor(table remote.Table) (tableSchema, error) {
	s, ok := schemas[table]
	if !ok {
		return tableSchema{}, errors.NewInvalidInputError("table", string(table), "unknown table")
	}
	return s, nil
}

func (s tableSchema) column(name string) (column, error) {
	for _, c := range s.columns {
		if c.name == name {
			return c, nil
		}
	}
	return column{}, errors.NewInvalidInputError("column", name, fmt.Sprintf("unknown column on %s", s.table))
}

func (s tableSchema) names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

// writable reports whether callers may set the column directly.
func writable(name string) bool {
	return name != columnID && name != columnCreatedAt
}
