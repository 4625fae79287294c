package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/refs"
	"github.com/rahul/acadcore/internal/app/repositories"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

var (
	admin   = session.Session{UserID: "u-admin", Role: models.RoleAdmin}
	faculty = session.Session{UserID: "u-faculty", Role: models.RoleFaculty}
)

func newTestSet(t *testing.T) (*Set, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewSet(repositories.NewRepositories(st)), st
}

func seedStudentAndSubject(t *testing.T, set *Set) (studentID, subjectID string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, set.Students.Create(ctx, admin, models.Student{
		AdmissionNo: "ADM001", FirstName: "Asha",
	}))
	require.NoError(t, set.Subjects.Create(ctx, admin, models.Subject{
		Code: "CS101", Name: "Data Structures",
	}))

	return set.Students.State().Records[0].ID, set.Subjects.State().Records[0].ID
}

func TestStudentViewCreateRefetches(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	require.NoError(t, set.Students.Create(ctx, admin, models.Student{
		AdmissionNo: "ADM001", FirstName: "Asha",
	}))

	snap := set.Students.State()
	require.Len(t, snap.Records, 1)
	assert.NotEmpty(t, snap.Records[0].ID, "state is the refetched authoritative row")
	assert.NoError(t, snap.Err)
}

func TestStudentViewFailedCreateKeepsRecords(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()

	require.NoError(t, set.Students.Create(ctx, admin, models.Student{
		AdmissionNo: "ADM001", FirstName: "Asha",
	}))

	err := set.Students.Create(ctx, admin, models.Student{
		AdmissionNo: "ADM001", FirstName: "Rohan",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	snap := set.Students.State()
	assert.Len(t, snap.Records, 1, "a failed write leaves the collection untouched")
	assert.Error(t, snap.Err)
}

func TestMarkViewLabels(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()
	studentID, subjectID := seedStudentAndSubject(t, set)

	require.NoError(t, set.Marks.Create(ctx, faculty, models.Mark{
		StudentID: studentID, SubjectID: subjectID, Semester: 1, Marks: 80, MaxMarks: 100,
	}))

	records := set.Marks.State().Records
	require.Len(t, records, 1)
	assert.Equal(t, "ADM001 — Asha", records[0].StudentLabel)
	assert.Equal(t, "CS101 — Data Structures", records[0].SubjectLabel)
}

func TestMarkViewDanglingReferenceLabelsUnknown(t *testing.T) {
	set, st := newTestSet(t)
	ctx := context.Background()
	studentID, subjectID := seedStudentAndSubject(t, set)

	require.NoError(t, set.Marks.Create(ctx, faculty, models.Mark{
		StudentID: studentID, SubjectID: subjectID, Semester: 1, Marks: 80, MaxMarks: 100,
	}))

	// A mark referencing a student the store never had. Inserted directly,
	// bypassing referential checks, to model a stale read.
	_, err := st.Insert(ctx, store.CollectionMarks, store.Row{
		"student_id": "ghost", "subject_id": subjectID, "semester": 1, "marks": 50, "max_marks": 100,
	})
	require.NoError(t, err)

	require.NoError(t, set.Marks.Refresh(ctx, faculty))

	var ghost *LabeledMark
	for i := range set.Marks.State().Records {
		rec := set.Marks.State().Records[i]
		if rec.StudentID == "ghost" {
			ghost = &rec
			break
		}
	}
	require.NotNil(t, ghost)
	assert.Equal(t, refs.UnknownLabel, ghost.StudentLabel)
	assert.Equal(t, "CS101 — Data Structures", ghost.SubjectLabel)
}

func TestMarkViewConcurrentRefresh(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()
	studentID, subjectID := seedStudentAndSubject(t, set)

	require.NoError(t, set.Marks.Create(ctx, faculty, models.Mark{
		StudentID: studentID, SubjectID: subjectID, Semester: 1, Marks: 80, MaxMarks: 100,
	}))

	// One request per goroutine against the same per-user view set. The
	// label index must not be shared mutable state across refreshes.
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = set.Marks.Refresh(ctx, faculty)
		}()
	}
	wg.Wait()

	records := set.Marks.State().Records
	require.Len(t, records, 1)
	assert.Equal(t, "ADM001 — Asha", records[0].StudentLabel)
	assert.Equal(t, "CS101 — Data Structures", records[0].SubjectLabel)
}

func TestAttendanceViewSaveAndToggle(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()
	studentID, subjectID := seedStudentAndSubject(t, set)
	date := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)

	record := models.Attendance{StudentID: studentID, SubjectID: subjectID, Date: date, Present: true}
	require.NoError(t, set.Attendance.Save(ctx, faculty, record))

	records := set.Attendance.State().Records
	require.Len(t, records, 1)
	assert.True(t, records[0].Present)
	assert.Equal(t, "ADM001 — Asha", records[0].StudentLabel)

	// Saving the same triple again overwrites instead of duplicating.
	record.Present = false
	require.NoError(t, set.Attendance.Save(ctx, faculty, record))
	records = set.Attendance.State().Records
	require.Len(t, records, 1)
	assert.False(t, records[0].Present)

	require.NoError(t, set.Attendance.Toggle(ctx, faculty, models.Attendance{
		ID: records[0].ID, Present: records[0].Present,
	}))
	records = set.Attendance.State().Records
	require.Len(t, records, 1)
	assert.True(t, records[0].Present)
}

func TestViewCascadeReflectedAfterDelete(t *testing.T) {
	set, _ := newTestSet(t)
	ctx := context.Background()
	studentID, subjectID := seedStudentAndSubject(t, set)

	require.NoError(t, set.Marks.Create(ctx, faculty, models.Mark{
		StudentID: studentID, SubjectID: subjectID, Semester: 1, Marks: 80, MaxMarks: 100,
	}))

	require.NoError(t, set.Students.Remove(ctx, admin, studentID))
	require.NoError(t, set.Marks.Refresh(ctx, faculty))

	assert.Empty(t, set.Marks.State().Records, "cascade removes dependent marks")
	assert.Empty(t, set.Students.State().Records)
}

func TestRegistryScopesSetsPerUser(t *testing.T) {
	st := store.NewMemoryStore()
	registry := NewRegistry(repositories.NewRepositories(st))

	a := registry.For("user-a")
	b := registry.For("user-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, registry.For("user-a"), "same user gets the same set")

	registry.Drop("user-a")
	assert.NotSame(t, a, registry.For("user-a"), "dropped sets are rebuilt")
}

func TestRegistryEvictsStalestSet(t *testing.T) {
	st := store.NewMemoryStore()
	registry := NewRegistry(repositories.NewRepositories(st))
	registry.maxSets = 2

	clock := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)
	registry.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	a := registry.For("user-a")
	b := registry.For("user-b")
	_ = registry.For("user-a") // user-b is now the stalest

	c := registry.For("user-c")
	assert.Len(t, registry.sets, 2)
	assert.Same(t, a, registry.For("user-a"), "recently used sets survive eviction")
	assert.Same(t, c, registry.For("user-c"))
	assert.NotSame(t, b, registry.For("user-b"), "the stalest set was evicted and rebuilt")
}
