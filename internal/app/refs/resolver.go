// Package refs resolves opaque foreign keys to display labels from the
// collections currently in memory. A key whose referent was cascade-deleted
// or not yet loaded resolves to a sentinel instead of failing, so list
// rendering never breaks on a dangling reference.
package refs

import (
	"fmt"

	"github.com/rahul/acadcore/internal/app/models"
)

// UnknownLabel is returned for any id that does not resolve.
const UnknownLabel = "unknown"

// Resolver indexes students and subjects by id for O(1) label lookups. The
// index is rebuilt whenever a backing collection is refetched.
type Resolver struct {
	students map[string]models.Student
	subjects map[string]models.Subject
}

// NewResolver creates an empty resolver; every lookup resolves to the
// unknown sentinel until the collections are set.
func NewResolver() *Resolver {
	return &Resolver{
		students: map[string]models.Student{},
		subjects: map[string]models.Subject{},
	}
}

// SetStudents rebuilds the student index from a refetched collection.
func (r *Resolver) SetStudents(students []models.Student) {
	index := make(map[string]models.Student, len(students))
	for _, s := range students {
		index[s.ID] = s
	}
	r.students = index
}

// SetSubjects rebuilds the subject index from a refetched collection.
func (r *Resolver) SetSubjects(subjects []models.Subject) {
	index := make(map[string]models.Subject, len(subjects))
	for _, s := range subjects {
		index[s.ID] = s
	}
	r.subjects = index
}

// StudentLabel returns "ADM001 — Asha" for a known student id, or the
// unknown sentinel.
func (r *Resolver) StudentLabel(id string) string {
	s, ok := r.students[id]
	if !ok {
		return UnknownLabel
	}
	return fmt.Sprintf("%s — %s", s.AdmissionNo, s.FirstName)
}

// SubjectLabel returns "CS101 — Data Structures" for a known subject id, or
// the unknown sentinel.
func (r *Resolver) SubjectLabel(id string) string {
	s, ok := r.subjects[id]
	if !ok {
		return UnknownLabel
	}
	return fmt.Sprintf("%s — %s", s.Code, s.Name)
}
