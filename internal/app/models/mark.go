package models

import (
	"time"

	"github.com/rahul/acadcore/internal/store"
)

// Mark defines a single assessment result. Multiple marks per
// (student, subject, semester) are permitted; there is no uniqueness rule.
type Mark struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"studentId" db:"student_id" validate:"required"`
	SubjectID string    `json:"subjectId" db:"subject_id" validate:"required"`
	Semester  int       `json:"semester" db:"semester" validate:"gte=1,lte=12"`
	Marks     int       `json:"marks" db:"marks"`
	MaxMarks  int       `json:"maxMarks" db:"max_marks"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ToRow converts the mark into a store row.
func (m Mark) ToRow() store.Row {
	return store.Row{
		"student_id": m.StudentID,
		"subject_id": m.SubjectID,
		"semester":   m.Semester,
		"marks":      m.Marks,
		"max_marks":  m.MaxMarks,
	}
}

// MarkFromRow decodes a store row into a Mark.
func MarkFromRow(r store.Row) Mark {
	return Mark{
		ID:        r.String("id"),
		StudentID: r.String("student_id"),
		SubjectID: r.String("subject_id"),
		Semester:  r.Int("semester"),
		Marks:     r.Int("marks"),
		MaxMarks:  r.Int("max_marks"),
		CreatedAt: r.Time("created_at"),
	}
}
