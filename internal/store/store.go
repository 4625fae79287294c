// Package store defines the narrow query/command interface the core uses to
// talk to the shared remote structured store, plus the drivers implementing
// it. Uniqueness constraints and referential cascade deletes are enforced by
// the driver, not by callers.
package store

import (
	"context"
	"fmt"
	"time"
)

// Collection names used by the core.
const (
	CollectionStudents   = "students"
	CollectionSubjects   = "subjects"
	CollectionMarks      = "marks"
	CollectionAttendance = "attendance"
	CollectionProfiles   = "profiles"
)

// Row is a single record as the store sees it: column name to value.
type Row map[string]any

// String returns the named column as a string, or "" if absent.
func (r Row) String(column string) string {
	if v, ok := r[column].(string); ok {
		return v
	}
	return ""
}

// Int returns the named column as an int, tolerating the integer widths
// drivers produce.
func (r Row) Int(column string) int {
	switch v := r[column].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the named column as a bool, or false if absent.
func (r Row) Bool(column string) bool {
	if v, ok := r[column].(bool); ok {
		return v
	}
	return false
}

// Time returns the named column as a time.Time, or the zero time.
func (r Row) Time(column string) time.Time {
	if v, ok := r[column].(time.Time); ok {
		return v
	}
	return time.Time{}
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Filter is an equality filter on a single column.
type Filter struct {
	Column string
	Value  any
}

// Order describes result ordering.
type Order struct {
	Column     string
	Descending bool
}

// Options narrows a Query: column projection, equality filters, ordering.
type Options struct {
	Columns []string
	Filters []Filter
	OrderBy *Order
}

// Eq is a convenience constructor for an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Desc orders by the given column, newest first.
func Desc(column string) *Order {
	return &Order{Column: column, Descending: true}
}

// Store is the minimal command/query surface the core consumes. Mutations
// return the authoritative row as persisted; callers refetch collections
// rather than merging these results into local state.
type Store interface {
	Query(ctx context.Context, collection string, opts Options) ([]Row, error)
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	// Upsert inserts or, on a conflict over conflictColumns, overwrites the
	// non-key columns of the existing row. Executed as one atomic operation.
	Upsert(ctx context.Context, collection string, row Row, conflictColumns []string) (Row, error)
	Update(ctx context.Context, collection string, id string, patch Row) (Row, error)
	Delete(ctx context.Context, collection string, id string) error
}

// validIdent guards collection and column names interpolated into SQL. The
// core only passes static identifiers, so a violation is a programming error.
func validIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	for _, ch := range name {
		if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '_' {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	return nil
}
