package models

import (
	"time"

	"github.com/rahul/acadcore/internal/store"
)

// Attendance defines one attendance record. Exactly one record exists per
// (student, subject, date) triple; the store's composite unique constraint
// enforces this.
type Attendance struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"studentId" db:"student_id" validate:"required"`
	SubjectID string    `json:"subjectId" db:"subject_id" validate:"required"`
	Date      time.Time `json:"date" db:"date" validate:"required"`
	Present   bool      `json:"present" db:"present"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// AttendanceConflictColumns is the composite natural key the attendance
// upsert conflicts on.
var AttendanceConflictColumns = []string{"student_id", "subject_id", "date"}

// ToRow converts the record into a store row. The date travels as a plain
// YYYY-MM-DD string so key equality is stable across drivers.
func (a Attendance) ToRow() store.Row {
	return store.Row{
		"student_id": a.StudentID,
		"subject_id": a.SubjectID,
		"date":       a.Date.Format(DateLayout),
		"present":    a.Present,
	}
}

// AttendanceFromRow decodes a store row into an Attendance record.
func AttendanceFromRow(r store.Row) Attendance {
	return Attendance{
		ID:        r.String("id"),
		StudentID: r.String("student_id"),
		SubjectID: r.String("subject_id"),
		Date:      dateFromRow(r, "date"),
		Present:   r.Bool("present"),
		CreatedAt: r.Time("created_at"),
	}
}

// dateFromRow tolerates both representations drivers produce for a date
// column: time.Time from postgres, YYYY-MM-DD string from the memory driver.
func dateFromRow(r store.Row, column string) time.Time {
	if t := r.Time(column); !t.IsZero() {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	if s := r.String(column); s != "" {
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
