package repositories

import (
	"context"
	"strings"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/policy"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/validation"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

// SubjectRepository handles store operations for subjects
type SubjectRepository struct {
	store store.Store
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(st store.Store) *SubjectRepository {
	return &SubjectRepository{store: st}
}

// NormalizeSubjectCode upper-cases and trims a subject code before storage.
func NormalizeSubjectCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// List retrieves all subjects, newest first.
func (r *SubjectRepository) List(ctx context.Context, sess session.Session) ([]models.Subject, error) {
	if err := policy.Check(sess.Role, policy.ActionRead, policy.ResourceSubjects); err != nil {
		return nil, err
	}

	rows, err := r.store.Query(ctx, store.CollectionSubjects, store.Options{
		OrderBy: store.Desc("created_at"),
	})
	if err != nil {
		return nil, err
	}

	subjects := make([]models.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, models.SubjectFromRow(row))
	}
	return subjects, nil
}

// Create creates a new subject. Admin only. The code is case-normalized to
// upper-case before storage.
func (r *SubjectRepository) Create(ctx context.Context, sess session.Session, subject models.Subject) error {
	if err := policy.Check(sess.Role, policy.ActionCreate, policy.ResourceSubjects); err != nil {
		return err
	}

	subject.Code = NormalizeSubjectCode(subject.Code)
	subject.Name = strings.TrimSpace(subject.Name)
	if err := validation.Struct(subject); err != nil {
		return err
	}

	_, err := r.store.Insert(ctx, store.CollectionSubjects, subject.ToRow())
	return err
}

// SubjectPatch carries the fields an update may change.
type SubjectPatch struct {
	Code    *string `json:"code"`
	Name    *string `json:"name"`
	Credits *int    `json:"credits"`
}

func (p SubjectPatch) toRow() (store.Row, error) {
	row := store.Row{}
	if p.Code != nil {
		if err := validation.Required("code", *p.Code); err != nil {
			return nil, err
		}
		row["code"] = NormalizeSubjectCode(*p.Code)
	}
	if p.Name != nil {
		if err := validation.Required("name", *p.Name); err != nil {
			return nil, err
		}
		row["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Credits != nil {
		if *p.Credits < 0 {
			return nil, apperrors.NewValidationError("credits cannot be negative")
		}
		row["credits"] = *p.Credits
	}
	return row, nil
}

// Update applies a partial update to a subject. Admin only.
func (r *SubjectRepository) Update(ctx context.Context, sess session.Session, id string, patch SubjectPatch) error {
	if err := policy.Check(sess.Role, policy.ActionUpdate, policy.ResourceSubjects); err != nil {
		return err
	}

	row, err := patch.toRow()
	if err != nil {
		return err
	}
	if len(row) == 0 {
		return nil
	}

	_, err = r.store.Update(ctx, store.CollectionSubjects, id, row)
	return err
}

// Delete removes a subject. Admin only. Dependent marks and attendance rows
// are removed by the store's cascade.
func (r *SubjectRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	if err := policy.Check(sess.Role, policy.ActionDelete, policy.ResourceSubjects); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.CollectionSubjects, id)
}
