// Package sqlsource loads datasets from SQL query results.
package sqlsource

import (
	"context"
	"fmt"
	"time"

	"gounivar/domain/dataset"
	"gounivar/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Source runs queries against one database
type Source struct {
	db *sqlx.DB
}

// New wraps an open connection
func New(db *sqlx.DB) *Source {
	return &Source{db: db}
}

// Open connects with a registered driver ("postgres", "sqlite")
func Open(driver, dsn string) (*Source, error) {
	if driver == "" || dsn == "" {
		return nil, errors.ConfigInvalid("database driver and dsn are required")
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}
	return &Source{db: db}, nil
}

// Close closes the underlying connection
func (s *Source) Close() error {
	return s.db.Close()
}

// Load runs the query and turns the result set into a Dataset, one column
// per selected column. Text stays text; only driver-level numbers become
// numbers.
func (s *Source) Load(ctx context.Context, query string, args ...interface{}) (*dataset.Dataset, error) {
	if query == "" {
		return nil, errors.InvalidInput("query is required")
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to run dataset query")
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read result columns")
	}

	columns := make([]dataset.Column, len(names))
	for j, name := range names {
		columns[j] = dataset.Column{Name: name}
	}

	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		for j, v := range record {
			columns[j].Values = append(columns[j].Values, valueOf(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate rows")
	}

	ds, err := dataset.New(columns...)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("query returned no rows: %s", query))
	}
	return ds, nil
}

// valueOf converts a scanned cell. Postgres returns NUMERIC and some text
// types as []byte, so bytes are parsed like file cells.
func valueOf(v interface{}) dataset.Value {
	switch x := v.(type) {
	case []byte:
		return dataset.Parse(string(x))
	case time.Time:
		return dataset.String(x.Format(time.RFC3339))
	default:
		return dataset.Of(x)
	}
}
