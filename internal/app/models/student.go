package models

import (
	"time"

	"github.com/rahul/acadcore/internal/store"
)

// Student defines the student model based on the 'students' collection
type Student struct {
	ID          string    `json:"id" db:"id"`
	AdmissionNo string    `json:"admissionNo" db:"admission_no" validate:"required"` // Unique admission number
	FirstName   string    `json:"firstName" db:"first_name" validate:"required"`
	LastName    string    `json:"lastName" db:"last_name"`
	Email       string    `json:"email" db:"email" validate:"omitempty,email"`
	Phone       string    `json:"phone" db:"phone"`
	Branch      string    `json:"branch" db:"branch"`
	Year        int       `json:"year" db:"year" validate:"omitempty,gte=1"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ToRow converts the student into a store row for create/upsert calls. The
// id and created_at columns are owned by the store.
func (s Student) ToRow() store.Row {
	return store.Row{
		"admission_no": s.AdmissionNo,
		"first_name":   s.FirstName,
		"last_name":    s.LastName,
		"email":        s.Email,
		"phone":        s.Phone,
		"branch":       s.Branch,
		"year":         s.Year,
	}
}

// StudentFromRow decodes a store row into a Student.
func StudentFromRow(r store.Row) Student {
	return Student{
		ID:          r.String("id"),
		AdmissionNo: r.String("admission_no"),
		FirstName:   r.String("first_name"),
		LastName:    r.String("last_name"),
		Email:       r.String("email"),
		Phone:       r.String("phone"),
		Branch:      r.String("branch"),
		Year:        r.Int("year"),
		CreatedAt:   r.Time("created_at"),
	}
}
