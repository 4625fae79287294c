package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

// UniqueConstraint declares a single or composite uniqueness rule over a
// collection, mirroring a database unique index.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// CascadeRule declares that deleting a row also deletes rows in Child whose
// Column references the deleted id.
type CascadeRule struct {
	Child  string
	Column string
}

// CheckRule declares a row-level validity rule, mirroring a database CHECK
// constraint. Valid receives the full row as it would be persisted.
type CheckRule struct {
	Name  string
	Valid func(Row) bool
}

// CollectionSpec is the per-collection contract the memory driver enforces.
type CollectionSpec struct {
	Unique   []UniqueConstraint
	Cascades []CascadeRule
	Checks   []CheckRule
}

// MemoryStore is an in-memory Store used by tests and the memory driver mode.
// It honors the same uniqueness and cascade contracts as the Postgres schema
// so behavior under conflict is identical.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]map[string]Row
	specs map[string]CollectionSpec
	now   func() time.Time
}

// NewMemoryStore creates a memory store preloaded with the academic records
// schema: unique admission numbers, unique subject codes, at most one
// attendance row per (student, subject, date), and cascade deletes from
// students and subjects to marks and attendance.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithSpecs(map[string]CollectionSpec{
		CollectionStudents: {
			Unique: []UniqueConstraint{
				{Name: "students_admission_no_key", Columns: []string{"admission_no"}},
			},
			Cascades: []CascadeRule{
				{Child: CollectionMarks, Column: "student_id"},
				{Child: CollectionAttendance, Column: "student_id"},
			},
			Checks: []CheckRule{
				{Name: "students_year_check", Valid: columnAtLeast("year", 1)},
			},
		},
		CollectionSubjects: {
			Unique: []UniqueConstraint{
				{Name: "subjects_code_key", Columns: []string{"code"}},
			},
			Cascades: []CascadeRule{
				{Child: CollectionMarks, Column: "subject_id"},
				{Child: CollectionAttendance, Column: "subject_id"},
			},
			Checks: []CheckRule{
				{Name: "subjects_credits_check", Valid: columnAtLeast("credits", 0)},
			},
		},
		CollectionMarks: {
			Checks: []CheckRule{
				{Name: "marks_semester_check", Valid: func(r Row) bool {
					s := r.Int("semester")
					return s >= 1 && s <= 12
				}},
				{Name: "marks_marks_check", Valid: columnAtLeast("marks", 0)},
				{Name: "marks_max_marks_check", Valid: columnAtLeast("max_marks", 1)},
				{Name: "marks_within_max", Valid: func(r Row) bool {
					return r.Int("marks") <= r.Int("max_marks")
				}},
			},
		},
		CollectionAttendance: {
			Unique: []UniqueConstraint{
				{Name: "attendance_student_subject_date_key", Columns: []string{"student_id", "subject_id", "date"}},
			},
		},
		CollectionProfiles: {},
	})
}

// NewMemoryStoreWithSpecs creates a memory store with explicit collection
// contracts.
func NewMemoryStoreWithSpecs(specs map[string]CollectionSpec) *MemoryStore {
	data := make(map[string]map[string]Row, len(specs))
	for name := range specs {
		data[name] = map[string]Row{}
	}
	return &MemoryStore{data: data, specs: specs, now: time.Now}
}

func (s *MemoryStore) collection(name string) (map[string]Row, error) {
	rows, ok := s.data[name]
	if !ok {
		return nil, apperrors.NewTransientError(fmt.Errorf("unknown collection %q", name), "store request failed")
	}
	return rows, nil
}

// Query retrieves rows with optional filters, projection and ordering.
func (s *MemoryStore) Query(_ context.Context, collection string, opts Options) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	var result []Row
	for _, row := range rows {
		if !matchesFilters(row, opts.Filters) {
			continue
		}
		result = append(result, projectRow(row, opts.Columns))
	}

	if opts.OrderBy != nil {
		order := *opts.OrderBy
		sort.SliceStable(result, func(i, j int) bool {
			less := compareValues(result[i][order.Column], result[j][order.Column])
			if order.Descending {
				return less > 0
			}
			return less < 0
		})
	}

	return result, nil
}

// Insert creates a row, assigning an id and created_at when absent.
func (s *MemoryStore) Insert(_ context.Context, collection string, row Row) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	stored := row.Clone()
	if stored.String("id") == "" {
		stored["id"] = uuid.New().String()
	} else if _, exists := rows[stored.String("id")]; exists {
		return nil, apperrors.NewConflictError(
			apperrors.ErrConflict,
			fmt.Sprintf("duplicate key in %s", collection),
		)
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = s.now()
	}

	if err := s.checkUnique(collection, stored, ""); err != nil {
		return nil, err
	}
	if err := s.checkRules(collection, stored); err != nil {
		return nil, err
	}

	rows[stored.String("id")] = stored
	return stored.Clone(), nil
}

// Upsert inserts, or overwrites the non-key columns of the one existing row
// matching the conflict key. At most one row per key can ever exist because
// the lookup and the write happen under the same lock, the way a database
// enforces its unique index in one statement.
func (s *MemoryStore) Upsert(_ context.Context, collection string, row Row, conflictColumns []string) (Row, error) {
	if len(conflictColumns) == 0 {
		return nil, fmt.Errorf("upsert requires a conflict key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	var existing Row
	for _, candidate := range rows {
		if columnsEqual(candidate, row, conflictColumns) {
			existing = candidate
			break
		}
	}

	if existing == nil {
		stored := row.Clone()
		if stored.String("id") == "" {
			stored["id"] = uuid.New().String()
		}
		if _, ok := stored["created_at"]; !ok {
			stored["created_at"] = s.now()
		}
		if err := s.checkUnique(collection, stored, ""); err != nil {
			return nil, err
		}
		if err := s.checkRules(collection, stored); err != nil {
			return nil, err
		}
		rows[stored.String("id")] = stored
		return stored.Clone(), nil
	}

	conflictSet := make(map[string]bool, len(conflictColumns))
	for _, c := range conflictColumns {
		conflictSet[c] = true
	}
	merged := existing.Clone()
	for column, value := range row {
		if conflictSet[column] || column == "id" || column == "created_at" {
			continue
		}
		merged[column] = value
	}
	if err := s.checkRules(collection, merged); err != nil {
		return nil, err
	}
	rows[merged.String("id")] = merged
	return merged.Clone(), nil
}

// Update patches the row with the given id.
func (s *MemoryStore) Update(_ context.Context, collection string, id string, patch Row) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	existing, ok := rows[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no %s row with id %s", collection, id))
	}

	updated := existing.Clone()
	for column, value := range patch {
		if column == "id" || column == "created_at" {
			continue
		}
		updated[column] = value
	}

	if err := s.checkUnique(collection, updated, id); err != nil {
		return nil, err
	}
	if err := s.checkRules(collection, updated); err != nil {
		return nil, err
	}

	rows[id] = updated
	return updated.Clone(), nil
}

// Delete removes a row and applies the registered cascade rules.
func (s *MemoryStore) Delete(_ context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.collection(collection)
	if err != nil {
		return err
	}

	if _, ok := rows[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("no %s row with id %s", collection, id))
	}
	delete(rows, id)

	for _, cascade := range s.specs[collection].Cascades {
		children := s.data[cascade.Child]
		for childID, child := range children {
			if child.String(cascade.Column) == id {
				delete(children, childID)
			}
		}
	}

	return nil
}

// checkUnique enforces the collection's uniqueness constraints, skipping the
// row identified by selfID on updates.
func (s *MemoryStore) checkUnique(collection string, row Row, selfID string) error {
	for _, constraint := range s.specs[collection].Unique {
		for id, other := range s.data[collection] {
			if id == selfID {
				continue
			}
			if columnsEqual(other, row, constraint.Columns) {
				return apperrors.NewConflictError(
					apperrors.ErrConflict,
					fmt.Sprintf("duplicate value violates %s", constraint.Name),
				)
			}
		}
	}
	return nil
}

// checkRules enforces the collection's check constraints on the row as it
// would be persisted.
func (s *MemoryStore) checkRules(collection string, row Row) error {
	for _, check := range s.specs[collection].Checks {
		if !check.Valid(row) {
			return apperrors.NewValidationError(fmt.Sprintf("value violates %s", check.Name))
		}
	}
	return nil
}

// columnAtLeast builds a check passing when the column is absent (the schema
// default applies) or its integer value meets the minimum.
func columnAtLeast(column string, min int64) func(Row) bool {
	return func(r Row) bool {
		v, ok := r[column]
		if !ok {
			return true
		}
		n, ok := toInt64(v)
		return ok && n >= min
	}
}

func matchesFilters(row Row, filters []Filter) bool {
	for _, f := range filters {
		if compareValues(row[f.Column], f.Value) != 0 {
			return false
		}
	}
	return true
}

func projectRow(row Row, columns []string) Row {
	if len(columns) == 0 {
		return row.Clone()
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out[c] = v
		}
	}
	return out
}

func columnsEqual(a, b Row, columns []string) bool {
	for _, c := range columns {
		if compareValues(a[c], b[c]) != 0 {
			return false
		}
	}
	return true
}

// compareValues orders two store values: negative when a < b, zero when
// equal. Mixed or unknown types fall back to string comparison.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	case int:
		if bv, ok := toInt64(b); ok {
			return compareInt64(int64(av), bv)
		}
	case int32:
		if bv, ok := toInt64(b); ok {
			return compareInt64(int64(av), bv)
		}
	case int64:
		if bv, ok := toInt64(b); ok {
			return compareInt64(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
