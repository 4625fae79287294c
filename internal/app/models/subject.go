package models

import (
	"time"

	"github.com/rahul/acadcore/internal/store"
)

// Subject defines the subject model based on the 'subjects' collection
type Subject struct {
	ID        string    `json:"id" db:"id"`
	Code      string    `json:"code" db:"code" validate:"required"` // Unique, stored upper-case
	Name      string    `json:"name" db:"name" validate:"required"`
	Credits   int       `json:"credits" db:"credits" validate:"omitempty,gte=0"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ToRow converts the subject into a store row.
func (s Subject) ToRow() store.Row {
	return store.Row{
		"code":    s.Code,
		"name":    s.Name,
		"credits": s.Credits,
	}
}

// SubjectFromRow decodes a store row into a Subject.
func SubjectFromRow(r store.Row) Subject {
	return Subject{
		ID:        r.String("id"),
		Code:      r.String("code"),
		Name:      r.String("name"),
		Credits:   r.Int("credits"),
		CreatedAt: r.Time("created_at"),
	}
}
