package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/dberrors"
)

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Query retrieves rows from a collection with optional filters and ordering.
func (s *PostgresStore) Query(ctx context.Context, collection string, opts Options) ([]Row, error) {
	if err := validIdent(collection); err != nil {
		return nil, err
	}

	columns := "*"
	if len(opts.Columns) > 0 {
		for _, c := range opts.Columns {
			if err := validIdent(c); err != nil {
				return nil, err
			}
		}
		columns = strings.Join(opts.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", columns, collection)

	var args []any
	for i, f := range opts.Filters {
		if err := validIdent(f.Column); err != nil {
			return nil, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = $%d", f.Column, i+1)
		args = append(args, f.Value)
	}

	if opts.OrderBy != nil {
		if err := validIdent(opts.OrderBy.Column); err != nil {
			return nil, err
		}
		direction := "ASC"
		if opts.OrderBy.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", opts.OrderBy.Column, direction)
	}

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, normalizeStoreError(err, collection)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, normalizeStoreError(err, collection)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, normalizeStoreError(err, collection)
	}

	return result, nil
}

// Insert creates a new row and returns it as persisted.
func (s *PostgresStore) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	if err := validIdent(collection); err != nil {
		return nil, err
	}

	columns, placeholders, args, err := insertParts(row)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		collection, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	return s.queryOne(ctx, collection, query, args)
}

// Upsert inserts or overwrites the non-key columns of the row matching the
// composite conflict key. A single round trip; the database's unique
// constraint arbitrates concurrent writers.
func (s *PostgresStore) Upsert(ctx context.Context, collection string, row Row, conflictColumns []string) (Row, error) {
	if err := validIdent(collection); err != nil {
		return nil, err
	}
	if len(conflictColumns) == 0 {
		return nil, fmt.Errorf("upsert requires a conflict key")
	}
	for _, c := range conflictColumns {
		if err := validIdent(c); err != nil {
			return nil, err
		}
	}

	columns, placeholders, args, err := insertParts(row)
	if err != nil {
		return nil, err
	}

	conflictSet := make(map[string]bool, len(conflictColumns))
	for _, c := range conflictColumns {
		conflictSet[c] = true
	}

	var updates []string
	for _, c := range columns {
		if conflictSet[c] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	if len(updates) == 0 {
		// Nothing to overwrite; keep the existing row as-is.
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", conflictColumns[0], conflictColumns[0]))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		collection,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictColumns, ", "),
		strings.Join(updates, ", "),
	)

	return s.queryOne(ctx, collection, query, args)
}

// Update patches the row with the given id and returns the persisted result.
func (s *PostgresStore) Update(ctx context.Context, collection string, id string, patch Row) (Row, error) {
	if err := validIdent(collection); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("empty patch")
	}

	columns := sortedColumns(patch)
	var sets []string
	var args []any
	for i, c := range columns {
		if err := validIdent(c); err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+1))
		args = append(args, patch[c])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING *",
		collection, strings.Join(sets, ", "), len(args),
	)

	return s.queryOne(ctx, collection, query, args)
}

// Delete removes the row with the given id.
func (s *PostgresStore) Delete(ctx context.Context, collection string, id string) error {
	if err := validIdent(collection); err != nil {
		return err
	}

	cmdTag, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", collection), id)
	if err != nil {
		return normalizeStoreError(err, collection)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("no %s row with id %s", collection, id))
	}

	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, collection, query string, args []any) (Row, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, normalizeStoreError(err, collection)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, normalizeStoreError(err, collection)
		}
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s row not found", collection))
	}

	row, err := scanRow(rows)
	if err != nil {
		return nil, normalizeStoreError(err, collection)
	}
	return row, rows.Err()
}

// insertParts splits a row into deterministic column, placeholder and
// argument slices.
func insertParts(row Row) (columns, placeholders []string, args []any, err error) {
	if len(row) == 0 {
		return nil, nil, nil, fmt.Errorf("empty row")
	}

	columns = sortedColumns(row)
	for i, c := range columns {
		if err := validIdent(c); err != nil {
			return nil, nil, nil, err
		}
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, row[c])
	}
	return columns, placeholders, args, nil
}

func sortedColumns(row Row) []string {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}

// scanRow converts the current pgx result row into a Row keyed by column name.
func scanRow(rows pgx.Rows) (Row, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	descriptions := rows.FieldDescriptions()
	row := make(Row, len(descriptions))
	for i, fd := range descriptions {
		row[fd.Name] = values[i]
	}
	return row, nil
}

// normalizeStoreError maps driver errors into the application taxonomy.
func normalizeStoreError(err error, collection string) error {
	switch {
	case dberrors.IsUniqueViolation(err):
		return apperrors.NewConflictError(err, fmt.Sprintf("duplicate value violates a uniqueness constraint on %s", collection))
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewConflictError(apperrors.ErrInvalidReference, fmt.Sprintf("row in %s references a missing record", collection))
	case dberrors.IsCheckViolation(err):
		return apperrors.NewValidationError(fmt.Sprintf("row in %s violates a check constraint", collection))
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFoundError(fmt.Sprintf("%s row not found", collection))
	default:
		return apperrors.NewTransientError(err, fmt.Sprintf("store request for %s failed", collection))
	}
}
