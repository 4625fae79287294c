// Package repositories wraps the remote store with the role policy, local
// validation and error normalization. Every mutating call checks the policy
// first and fails fast without contacting the store; successful writes only
// signal success, and callers refetch the collection for authoritative state.
package repositories

import (
	"github.com/rahul/acadcore/internal/store"
)

// Repositories holds all the repository instances
type Repositories struct {
	Students   *StudentRepository
	Subjects   *SubjectRepository
	Marks      *MarkRepository
	Attendance *AttendanceRepository
}

// NewRepositories initializes all repositories over the given store.
func NewRepositories(st store.Store) *Repositories {
	return &Repositories{
		Students:   NewStudentRepository(st),
		Subjects:   NewSubjectRepository(st),
		Marks:      NewMarkRepository(st),
		Attendance: NewAttendanceRepository(st),
	}
}
