package repositories

import (
	"context"
	"fmt"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/policy"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/validation"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

// MarkRepository handles store operations for marks
type MarkRepository struct {
	store store.Store
}

// NewMarkRepository creates a new mark repository
func NewMarkRepository(st store.Store) *MarkRepository {
	return &MarkRepository{store: st}
}

// validateMarkBounds enforces 0 <= marks <= max_marks with a positive
// max_marks. Rejected marks never reach the store.
func validateMarkBounds(marks, maxMarks int) error {
	if maxMarks < 1 {
		return apperrors.NewValidationError("max_marks must be positive")
	}
	if marks < 0 || marks > maxMarks {
		return apperrors.NewValidationError(
			fmt.Sprintf("marks must be between 0 and %d", maxMarks),
		)
	}
	return nil
}

// List retrieves all marks, most recent first.
func (r *MarkRepository) List(ctx context.Context, sess session.Session) ([]models.Mark, error) {
	if err := policy.Check(sess.Role, policy.ActionRead, policy.ResourceMarks); err != nil {
		return nil, err
	}

	rows, err := r.store.Query(ctx, store.CollectionMarks, store.Options{
		OrderBy: store.Desc("created_at"),
	})
	if err != nil {
		return nil, err
	}

	marks := make([]models.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, models.MarkFromRow(row))
	}
	return marks, nil
}

// Create records a new mark. Faculty or admin.
func (r *MarkRepository) Create(ctx context.Context, sess session.Session, mark models.Mark) error {
	if err := policy.Check(sess.Role, policy.ActionCreate, policy.ResourceMarks); err != nil {
		return err
	}

	if err := validation.Struct(mark); err != nil {
		return err
	}
	if err := validateMarkBounds(mark.Marks, mark.MaxMarks); err != nil {
		return err
	}

	_, err := r.store.Insert(ctx, store.CollectionMarks, mark.ToRow())
	return err
}

// MarkPatch carries the fields an update may change. Student, subject and
// semester identify the mark and are fixed at creation.
type MarkPatch struct {
	Marks    *int `json:"marks"`
	MaxMarks *int `json:"maxMarks"`
}

func (p MarkPatch) toRow() (store.Row, error) {
	row := store.Row{}
	if p.Marks != nil && p.MaxMarks != nil {
		if err := validateMarkBounds(*p.Marks, *p.MaxMarks); err != nil {
			return nil, err
		}
		row["marks"] = *p.Marks
		row["max_marks"] = *p.MaxMarks
		return row, nil
	}
	if p.Marks != nil {
		if *p.Marks < 0 {
			return nil, apperrors.NewValidationError("marks cannot be negative")
		}
		row["marks"] = *p.Marks
	}
	if p.MaxMarks != nil {
		if *p.MaxMarks < 1 {
			return nil, apperrors.NewValidationError("max_marks must be positive")
		}
		row["max_marks"] = *p.MaxMarks
	}
	return row, nil
}

// Update applies a partial update to a mark. Faculty or admin. The store's
// bounds check remains the final authority when only one side of the
// marks/max_marks pair is patched.
func (r *MarkRepository) Update(ctx context.Context, sess session.Session, id string, patch MarkPatch) error {
	if err := policy.Check(sess.Role, policy.ActionUpdate, policy.ResourceMarks); err != nil {
		return err
	}

	row, err := patch.toRow()
	if err != nil {
		return err
	}
	if len(row) == 0 {
		return nil
	}

	_, err = r.store.Update(ctx, store.CollectionMarks, id, row)
	return err
}

// Delete removes a mark. Faculty or admin.
func (r *MarkRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	if err := policy.Check(sess.Role, policy.ActionDelete, policy.ResourceMarks); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.CollectionMarks, id)
}
