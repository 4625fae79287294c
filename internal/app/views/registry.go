package views

import (
	"sync"
	"time"

	"github.com/rahul/acadcore/internal/app/repositories"
)

// Set bundles the four entity views one user works with.
type Set struct {
	Students   *StudentView
	Subjects   *SubjectView
	Marks      *MarkView
	Attendance *AttendanceView
}

// NewSet creates the view set over the repositories.
func NewSet(repos *repositories.Repositories) *Set {
	return &Set{
		Students:   NewStudentView(repos.Students),
		Subjects:   NewSubjectView(repos.Subjects),
		Marks:      NewMarkView(repos.Marks, repos.Students, repos.Subjects),
		Attendance: NewAttendanceView(repos.Attendance, repos.Students, repos.Subjects),
	}
}

// Reset clears all views in the set.
func (s *Set) Reset() {
	s.Students.Reset()
	s.Subjects.Reset()
	s.Marks.Reset()
	s.Attendance.Reset()
}

// defaultMaxSets bounds how many per-user view sets the registry keeps. Sets
// are cheap session-scoped caches; evicting one only costs the next request a
// refetch.
const defaultMaxSets = 1024

type registryEntry struct {
	set      *Set
	lastUsed time.Time
}

// Registry hands out a view set per user so the double-submit guard scopes
// to one user's session rather than the whole process. Sets are dropped on
// sign-out; beyond the size bound the least recently used set is evicted so
// the map cannot grow with every distinct user a long-lived process serves.
type Registry struct {
	mu      sync.Mutex
	repos   *repositories.Repositories
	sets    map[string]*registryEntry
	maxSets int
	now     func() time.Time
}

// NewRegistry creates a registry over the repositories.
func NewRegistry(repos *repositories.Repositories) *Registry {
	return &Registry{
		repos:   repos,
		sets:    map[string]*registryEntry{},
		maxSets: defaultMaxSets,
		now:     time.Now,
	}
}

// For returns the user's view set, creating it on first use.
func (r *Registry) For(userID string) *Set {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sets[userID]
	if !ok {
		if len(r.sets) >= r.maxSets {
			r.evictStalest()
		}
		entry = &registryEntry{set: NewSet(r.repos)}
		r.sets[userID] = entry
	}
	entry.lastUsed = r.now()
	return entry.set
}

// Drop discards a user's view set, invalidating any in-flight results.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sets[userID]; ok {
		entry.set.Reset()
		delete(r.sets, userID)
	}
}

// evictStalest removes the least recently used set. Caller holds the lock.
func (r *Registry) evictStalest() {
	var stalestID string
	var stalest time.Time
	for id, entry := range r.sets {
		if stalestID == "" || entry.lastUsed.Before(stalest) {
			stalestID = id
			stalest = entry.lastUsed
		}
	}
	if stalestID != "" {
		r.sets[stalestID].set.Reset()
		delete(r.sets, stalestID)
	}
}
