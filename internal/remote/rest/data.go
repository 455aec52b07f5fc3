package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"insightpm/internal/errors"
	"insightpm/internal/remote"
)

const preferRepresentation = "return=representation"

// filterQuery renders equality filters as PostgREST operators.
func filterQuery(filters []remote.Filter) url.Values {
	q := url.Values{}
	for _, f := range filters {
		if f.Value == nil {
			q.Add(f.Column, "is.null")
			continue
		}
		q.Add(f.Column, "eq."+fmt.Sprint(f.Value))
	}
	return q
}

func tablePath(table remote.Table) (string, error) {
	if !table.Valid() {
		return "", errors.NewInvalidInputError("table", string(table), "unknown table")
	}
	return restPath + string(table), nil
}

// Select returns matching rows.
func (c *Client) Select(ctx context.Context, table remote.Table, filters ...remote.Filter) ([]remote.Row, error) {
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	q := filterQuery(filters)
	q.Set("select", "*")

	var rows []remote.Row
	err = c.do(ctx, request{op: "select " + string(table), method: http.MethodGet, path: path, query: q}, &rows)
	if err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

// Insert creates rows and returns them as stored.
func (c *Client) Insert(ctx context.Context, table remote.Table, rows []remote.Row) ([]remote.Row, error) {
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	var out []remote.Row
	err = c.do(ctx, request{
		op:     "insert " + string(table),
		method: http.MethodPost,
		path:   path,
		body:   rows,
		header: map[string]string{"Prefer": preferRepresentation},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Update patches matching rows and returns them as updated.
func (c *Client) Update(ctx context.Context, table remote.Table, patch remote.Row, filters ...remote.Filter) ([]remote.Row, error) {
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	var out []remote.Row
	err = c.do(ctx, request{
		op:     "update " + string(table),
		method: http.MethodPatch,
		path:   path,
		query:  filterQuery(filters),
		body:   patch,
		header: map[string]string{"Prefer": preferRepresentation},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Delete removes matching rows and returns them.
func (c *Client) Delete(ctx context.Context, table remote.Table, filters ...remote.Filter) ([]remote.Row, error) {
	path, err := tablePath(table)
	if err != nil {
		return nil, err
	}
	var out []remote.Row
	err = c.do(ctx, request{
		op:     "delete " + string(table),
		method: http.MethodDelete,
		path:   path,
		query:  filterQuery(filters),
		header: map[string]string{"Prefer": preferRepresentation},
	}, &out)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func nonNil(rows []remote.Row) []remote.Row {
	if rows == nil {
		return []remote.Row{}
	}
	return rows
}
