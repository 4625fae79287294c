package views

import (
	"context"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/app/refs"
	"github.com/rahul/acadcore/internal/app/repositories"
	"github.com/rahul/acadcore/internal/session"
)

// StudentView is the student collection surface for the presentation layer.
type StudentView struct {
	repo  *repositories.StudentRepository
	coord *coordinator[models.Student]
}

// NewStudentView creates a student view over the repository.
func NewStudentView(repo *repositories.StudentRepository) *StudentView {
	return &StudentView{repo: repo, coord: newCoordinator[models.Student]()}
}

// State returns the current view-ready snapshot.
func (v *StudentView) State() Snapshot[models.Student] { return v.coord.snapshot() }

// Reset clears the view on session change or teardown.
func (v *StudentView) Reset() { v.coord.reset() }

// Refresh refetches the collection.
func (v *StudentView) Refresh(ctx context.Context, sess session.Session) error {
	return v.coord.refresh(ctx, func(ctx context.Context) ([]models.Student, error) {
		return v.repo.List(ctx, sess)
	})
}

// Create submits a new student and refetches on success.
func (v *StudentView) Create(ctx context.Context, sess session.Session, student models.Student) error {
	return v.coord.mutate(ctx, "create",
		func(ctx context.Context) error { return v.repo.Create(ctx, sess, student) },
		func(ctx context.Context) ([]models.Student, error) { return v.repo.List(ctx, sess) },
	)
}

// Update submits a partial update and refetches on success.
func (v *StudentView) Update(ctx context.Context, sess session.Session, id string, patch repositories.StudentPatch) error {
	return v.coord.mutate(ctx, "update:"+id,
		func(ctx context.Context) error { return v.repo.Update(ctx, sess, id, patch) },
		func(ctx context.Context) ([]models.Student, error) { return v.repo.List(ctx, sess) },
	)
}

// Remove deletes a student and refetches on success.
func (v *StudentView) Remove(ctx context.Context, sess session.Session, id string) error {
	return v.coord.mutate(ctx, "delete:"+id,
		func(ctx context.Context) error { return v.repo.Delete(ctx, sess, id) },
		func(ctx context.Context) ([]models.Student, error) { return v.repo.List(ctx, sess) },
	)
}

// SubjectView is the subject collection surface for the presentation layer.
type SubjectView struct {
	repo  *repositories.SubjectRepository
	coord *coordinator[models.Subject]
}

// NewSubjectView creates a subject view over the repository.
func NewSubjectView(repo *repositories.SubjectRepository) *SubjectView {
	return &SubjectView{repo: repo, coord: newCoordinator[models.Subject]()}
}

// State returns the current view-ready snapshot.
func (v *SubjectView) State() Snapshot[models.Subject] { return v.coord.snapshot() }

// Reset clears the view on session change or teardown.
func (v *SubjectView) Reset() { v.coord.reset() }

// Refresh refetches the collection.
func (v *SubjectView) Refresh(ctx context.Context, sess session.Session) error {
	return v.coord.refresh(ctx, func(ctx context.Context) ([]models.Subject, error) {
		return v.repo.List(ctx, sess)
	})
}

// Create submits a new subject and refetches on success.
func (v *SubjectView) Create(ctx context.Context, sess session.Session, subject models.Subject) error {
	return v.coord.mutate(ctx, "create",
		func(ctx context.Context) error { return v.repo.Create(ctx, sess, subject) },
		func(ctx context.Context) ([]models.Subject, error) { return v.repo.List(ctx, sess) },
	)
}

// Update submits a partial update and refetches on success.
func (v *SubjectView) Update(ctx context.Context, sess session.Session, id string, patch repositories.SubjectPatch) error {
	return v.coord.mutate(ctx, "update:"+id,
		func(ctx context.Context) error { return v.repo.Update(ctx, sess, id, patch) },
		func(ctx context.Context) ([]models.Subject, error) { return v.repo.List(ctx, sess) },
	)
}

// Remove deletes a subject and refetches on success.
func (v *SubjectView) Remove(ctx context.Context, sess session.Session, id string) error {
	return v.coord.mutate(ctx, "delete:"+id,
		func(ctx context.Context) error { return v.repo.Delete(ctx, sess, id) },
		func(ctx context.Context) ([]models.Subject, error) { return v.repo.List(ctx, sess) },
	)
}

// LabeledMark is a mark joined with display labels for its foreign keys.
type LabeledMark struct {
	models.Mark
	StudentLabel string `json:"studentLabel"`
	SubjectLabel string `json:"subjectLabel"`
}

// MarkView is the mark collection surface. Refreshing also refetches the
// student and subject collections so labels are recomputed from fresh data.
type MarkView struct {
	marks    *repositories.MarkRepository
	students *repositories.StudentRepository
	subjects *repositories.SubjectRepository
	coord    *coordinator[LabeledMark]
}

// NewMarkView creates a mark view over the repositories.
func NewMarkView(marks *repositories.MarkRepository, students *repositories.StudentRepository, subjects *repositories.SubjectRepository) *MarkView {
	return &MarkView{
		marks:    marks,
		students: students,
		subjects: subjects,
		coord:    newCoordinator[LabeledMark](),
	}
}

// State returns the current view-ready snapshot.
func (v *MarkView) State() Snapshot[LabeledMark] { return v.coord.snapshot() }

// Reset clears the view on session change or teardown.
func (v *MarkView) Reset() { v.coord.reset() }

func (v *MarkView) fetch(ctx context.Context, sess session.Session) ([]LabeledMark, error) {
	students, err := v.students.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	subjects, err := v.subjects.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	marks, err := v.marks.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	// Concurrent refreshes run outside the coordinator lock, so the label
	// index is built per fetch rather than stored on the view.
	resolver := refs.NewResolver()
	resolver.SetStudents(students)
	resolver.SetSubjects(subjects)

	labeled := make([]LabeledMark, 0, len(marks))
	for _, m := range marks {
		labeled = append(labeled, LabeledMark{
			Mark:         m,
			StudentLabel: resolver.StudentLabel(m.StudentID),
			SubjectLabel: resolver.SubjectLabel(m.SubjectID),
		})
	}
	return labeled, nil
}

// Refresh refetches marks together with the label collections.
func (v *MarkView) Refresh(ctx context.Context, sess session.Session) error {
	return v.coord.refresh(ctx, func(ctx context.Context) ([]LabeledMark, error) {
		return v.fetch(ctx, sess)
	})
}

// Create submits a new mark and refetches on success.
func (v *MarkView) Create(ctx context.Context, sess session.Session, mark models.Mark) error {
	return v.coord.mutate(ctx, "create",
		func(ctx context.Context) error { return v.marks.Create(ctx, sess, mark) },
		func(ctx context.Context) ([]LabeledMark, error) { return v.fetch(ctx, sess) },
	)
}

// Update submits a partial update and refetches on success.
func (v *MarkView) Update(ctx context.Context, sess session.Session, id string, patch repositories.MarkPatch) error {
	return v.coord.mutate(ctx, "update:"+id,
		func(ctx context.Context) error { return v.marks.Update(ctx, sess, id, patch) },
		func(ctx context.Context) ([]LabeledMark, error) { return v.fetch(ctx, sess) },
	)
}

// Remove deletes a mark and refetches on success.
func (v *MarkView) Remove(ctx context.Context, sess session.Session, id string) error {
	return v.coord.mutate(ctx, "delete:"+id,
		func(ctx context.Context) error { return v.marks.Delete(ctx, sess, id) },
		func(ctx context.Context) ([]LabeledMark, error) { return v.fetch(ctx, sess) },
	)
}

// LabeledAttendance is an attendance record joined with display labels.
type LabeledAttendance struct {
	models.Attendance
	StudentLabel string `json:"studentLabel"`
	SubjectLabel string `json:"subjectLabel"`
}

// AttendanceView is the attendance collection surface, with the natural-key
// upsert and the per-record toggle.
type AttendanceView struct {
	attendance *repositories.AttendanceRepository
	students   *repositories.StudentRepository
	subjects   *repositories.SubjectRepository
	coord      *coordinator[LabeledAttendance]
}

// NewAttendanceView creates an attendance view over the repositories.
func NewAttendanceView(attendance *repositories.AttendanceRepository, students *repositories.StudentRepository, subjects *repositories.SubjectRepository) *AttendanceView {
	return &AttendanceView{
		attendance: attendance,
		students:   students,
		subjects:   subjects,
		coord:      newCoordinator[LabeledAttendance](),
	}
}

// State returns the current view-ready snapshot.
func (v *AttendanceView) State() Snapshot[LabeledAttendance] { return v.coord.snapshot() }

// Reset clears the view on session change or teardown.
func (v *AttendanceView) Reset() { v.coord.reset() }

func (v *AttendanceView) fetch(ctx context.Context, sess session.Session) ([]LabeledAttendance, error) {
	students, err := v.students.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	subjects, err := v.subjects.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	records, err := v.attendance.List(ctx, sess)
	if err != nil {
		return nil, err
	}

	resolver := refs.NewResolver()
	resolver.SetStudents(students)
	resolver.SetSubjects(subjects)

	labeled := make([]LabeledAttendance, 0, len(records))
	for _, rec := range records {
		labeled = append(labeled, LabeledAttendance{
			Attendance:   rec,
			StudentLabel: resolver.StudentLabel(rec.StudentID),
			SubjectLabel: resolver.SubjectLabel(rec.SubjectID),
		})
	}
	return labeled, nil
}

// Refresh refetches attendance together with the label collections.
func (v *AttendanceView) Refresh(ctx context.Context, sess session.Session) error {
	return v.coord.refresh(ctx, func(ctx context.Context) ([]LabeledAttendance, error) {
		return v.fetch(ctx, sess)
	})
}

// Save upserts the record for its (student, subject, date) triple and
// refetches on success. The guard key is the natural key, so double-submit
// of the same form is rejected while distinct triples may proceed.
func (v *AttendanceView) Save(ctx context.Context, sess session.Session, record models.Attendance) error {
	key := "save:" + record.StudentID + ":" + record.SubjectID + ":" + record.Date.Format(models.DateLayout)
	return v.coord.mutate(ctx, key,
		func(ctx context.Context) error { return v.attendance.Upsert(ctx, sess, record) },
		func(ctx context.Context) ([]LabeledAttendance, error) { return v.fetch(ctx, sess) },
	)
}

// Toggle flips a record's present flag and refetches on success.
func (v *AttendanceView) Toggle(ctx context.Context, sess session.Session, record models.Attendance) error {
	return v.coord.mutate(ctx, "toggle:"+record.ID,
		func(ctx context.Context) error { return v.attendance.Toggle(ctx, sess, record) },
		func(ctx context.Context) ([]LabeledAttendance, error) { return v.fetch(ctx, sess) },
	)
}

// Remove deletes a record and refetches on success.
func (v *AttendanceView) Remove(ctx context.Context, sess session.Session, id string) error {
	return v.coord.mutate(ctx, "delete:"+id,
		func(ctx context.Context) error { return v.attendance.Delete(ctx, sess, id) },
		func(ctx context.Context) ([]LabeledAttendance, error) { return v.fetch(ctx, sess) },
	)
}
