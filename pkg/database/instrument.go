package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// QueryObserver receives a low-cardinality label and the duration of each
// executed query.
type QueryObserver func(label string, duration time.Duration)

// DB wraps an sqlx pool and reports per-query timings to an observer. A nil
// observer disables reporting without changing call sites.
type DB struct {
	*sqlx.DB
	observe QueryObserver
}

// Wrap attaches a query observer to an sqlx pool.
func Wrap(db *sqlx.DB, observe QueryObserver) *DB {
	return &DB{DB: db, observe: observe}
}

func (d *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer d.track(query)()
	return d.DB.GetContext(ctx, dest, query, args...)
}

func (d *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	defer d.track(query)()
	return d.DB.SelectContext(ctx, dest, query, args...)
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.track(query)()
	return d.DB.ExecContext(ctx, query, args...)
}

func (d *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	defer d.track(query)()
	return d.DB.QueryRowxContext(ctx, query, args...)
}

func (d *DB) track(query string) func() {
	if d.observe == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d.observe(queryLabel(query), time.Since(start))
	}
}

// queryLabel reduces a SQL statement to "verb table" so the metric label
// set stays bounded.
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	verb := strings.ToLower(fields[0])

	var table string
	switch verb {
	case "select", "delete":
		for i, f := range fields {
			if strings.EqualFold(f, "FROM") && i+1 < len(fields) {
				table = strings.ToLower(fields[i+1])
				break
			}
		}
	case "insert":
		for i, f := range fields {
			if strings.EqualFold(f, "INTO") && i+1 < len(fields) {
				table = strings.ToLower(fields[i+1])
				break
			}
		}
	case "update":
		if len(fields) > 1 {
			table = strings.ToLower(fields[1])
		}
	}
	if table == "" {
		return verb
	}
	return verb + " " + table
}
