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

// StudentRepository handles store operations for students
type StudentRepository struct {
	store store.Store
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(st store.Store) *StudentRepository {
	return &StudentRepository{store: st}
}

// List retrieves all students, newest first.
func (r *StudentRepository) List(ctx context.Context, sess session.Session) ([]models.Student, error) {
	if err := policy.Check(sess.Role, policy.ActionRead, policy.ResourceStudents); err != nil {
		return nil, err
	}

	rows, err := r.store.Query(ctx, store.CollectionStudents, store.Options{
		OrderBy: store.Desc("created_at"),
	})
	if err != nil {
		return nil, err
	}

	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, models.StudentFromRow(row))
	}
	return students, nil
}

// Create creates a new student record. Admin only.
func (r *StudentRepository) Create(ctx context.Context, sess session.Session, student models.Student) error {
	if err := policy.Check(sess.Role, policy.ActionCreate, policy.ResourceStudents); err != nil {
		return err
	}

	student.AdmissionNo = strings.TrimSpace(student.AdmissionNo)
	student.FirstName = strings.TrimSpace(student.FirstName)
	if student.Year == 0 {
		// Matches the schema default for an omitted year.
		student.Year = 1
	}
	if err := validation.Struct(student); err != nil {
		return err
	}

	_, err := r.store.Insert(ctx, store.CollectionStudents, student.ToRow())
	return err
}

// StudentPatch carries the fields an update may change. Nil fields are left
// untouched.
type StudentPatch struct {
	AdmissionNo *string `json:"admissionNo"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Branch      *string `json:"branch"`
	Year        *int    `json:"year"`
}

func (p StudentPatch) toRow() (store.Row, error) {
	row := store.Row{}
	if p.AdmissionNo != nil {
		if err := validation.Required("admission_no", *p.AdmissionNo); err != nil {
			return nil, err
		}
		row["admission_no"] = strings.TrimSpace(*p.AdmissionNo)
	}
	if p.FirstName != nil {
		if err := validation.Required("first_name", *p.FirstName); err != nil {
			return nil, err
		}
		row["first_name"] = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		row["last_name"] = *p.LastName
	}
	if p.Email != nil {
		row["email"] = *p.Email
	}
	if p.Phone != nil {
		row["phone"] = *p.Phone
	}
	if p.Branch != nil {
		row["branch"] = *p.Branch
	}
	if p.Year != nil {
		if *p.Year < 1 {
			return nil, apperrors.NewValidationError("year must be a positive integer")
		}
		row["year"] = *p.Year
	}
	return row, nil
}

// Update applies a partial update to a student record. Admin only.
func (r *StudentRepository) Update(ctx context.Context, sess session.Session, id string, patch StudentPatch) error {
	if err := policy.Check(sess.Role, policy.ActionUpdate, policy.ResourceStudents); err != nil {
		return err
	}

	row, err := patch.toRow()
	if err != nil {
		return err
	}
	if len(row) == 0 {
		return nil
	}

	_, err = r.store.Update(ctx, store.CollectionStudents, id, row)
	return err
}

// Delete removes a student record. Admin only. Dependent marks and attendance
// rows are removed by the store's cascade.
func (r *StudentRepository) Delete(ctx context.Context, sess session.Session, id string) error {
	if err := policy.Check(sess.Role, policy.ActionDelete, policy.ResourceStudents); err != nil {
		return err
	}
	return r.store.Delete(ctx, store.CollectionStudents, id)
}
