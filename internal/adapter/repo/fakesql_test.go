package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type sqlCall struct {
	query string
	args  []any
}

// fakeSQL answers queries from per-query scripts and records every call.
type fakeSQL struct {
	calls []sqlCall
	rows  map[string][][]any
	row   map[string][]any
	tags  map[string]string
	errs  map[string]error
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{
		rows: map[string][][]any{},
		row:  map[string][]any{},
		tags: map[string]string{},
		errs: map[string]error{},
	}
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, sqlCall{query, args})
	if err := f.errs[query]; err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, ok := f.tags[query]
	if !ok {
		tag = "UPDATE 1"
	}
	return pgconn.NewCommandTag(tag), nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, sqlCall{query, args})
	if err := f.errs[query]; err != nil {
		return errRow{err}
	}
	values, ok := f.row[query]
	if !ok {
		return errRow{pgx.ErrNoRows}
	}
	return valuesRow(values)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, sqlCall{query, args})
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return &valuesRows{rows: f.rows[query]}, nil
}

func (f *fakeSQL) callsTo(query string) []sqlCall {
	var out []sqlCall
	for _, c := range f.calls {
		if c.query == query {
			out = append(out, c)
		}
	}
	return out
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type valuesRow []any

func (r valuesRow) Scan(dest ...any) error { return assign(dest, r) }

type valuesRows struct {
	rows [][]any
	idx  int
}

func (r *valuesRows) Close() {}
func (r *valuesRows) Err() error { return nil }
func (r *valuesRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *valuesRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *valuesRows) Values() ([]any, error) { return nil, fmt.Errorf("not supported") }
func (r *valuesRows) RawValues() [][]byte { return nil }
func (r *valuesRows) Conn() *pgx.Conn { return nil }

func (r *valuesRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *valuesRows) Scan(dest ...any) error {
	return assign(dest, r.rows[r.idx-1])
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case **string:
			if v == nil {
				*d = nil
			} else {
				s := v.(string)
				*d = &s
			}
		case *int:
			*d = v.(int)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

var fixedTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func classValues(id, title string, status any) []any {
	return []any{
		id, "teacher-1", "meditation", title, "", 20, "beginner", "en", nil,
		nil, nil, "mux", "up_1", nil, nil, status, nil,
		fixedTime, fixedTime,
	}
}
