package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

func studentRow(admissionNo, firstName string) Row {
	return Row{
		"admission_no": admissionNo,
		"first_name":   firstName,
		"last_name":    "",
		"email":        "",
		"phone":        "",
		"branch":       "CSE",
		"year":         1,
	}
}

func TestMemoryStoreInsertAssignsIdentity(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	row, err := st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Asha"))
	require.NoError(t, err)

	assert.NotEmpty(t, row.String("id"))
	assert.False(t, row.Time("created_at").IsZero())
	assert.Equal(t, "ADM001", row.String("admission_no"))
}

func TestMemoryStoreUniqueAdmissionNo(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Asha"))
	require.NoError(t, err)

	_, err = st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Rohan"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestMemoryStoreUniqueSubjectCode(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Insert(ctx, CollectionSubjects, Row{"code": "CS101", "name": "Programming", "credits": 4})
	require.NoError(t, err)

	_, err = st.Insert(ctx, CollectionSubjects, Row{"code": "CS101", "name": "Other", "credits": 3})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestMemoryStoreUpdateUniqueConflict(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first, err := st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Asha"))
	require.NoError(t, err)
	second, err := st.Insert(ctx, CollectionStudents, studentRow("ADM002", "Rohan"))
	require.NoError(t, err)

	_, err = st.Update(ctx, CollectionStudents, second.String("id"), Row{"admission_no": "ADM001"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Updating a row against its own key is not a conflict.
	_, err = st.Update(ctx, CollectionStudents, first.String("id"), Row{"admission_no": "ADM001", "year": 2})
	assert.NoError(t, err)
}

func TestMemoryStoreAttendanceUpsert(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	key := []string{"student_id", "subject_id", "date"}

	record := Row{
		"student_id": "s1",
		"subject_id": "c1",
		"date":       "2026-02-03",
		"present":    true,
	}

	first, err := st.Upsert(ctx, CollectionAttendance, record, key)
	require.NoError(t, err)
	require.NotEmpty(t, first.String("id"))
	assert.True(t, first.Bool("present"))

	// Same triple again with the flag flipped: the existing row is
	// overwritten, never duplicated.
	record["present"] = false
	second, err := st.Upsert(ctx, CollectionAttendance, record, key)
	require.NoError(t, err)
	assert.Equal(t, first.String("id"), second.String("id"))
	assert.False(t, second.Bool("present"))

	rows, err := st.Query(ctx, CollectionAttendance, Options{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// A different date is a new row.
	record["date"] = "2026-02-04"
	third, err := st.Upsert(ctx, CollectionAttendance, record, key)
	require.NoError(t, err)
	assert.NotEqual(t, first.String("id"), third.String("id"))
}

func TestMemoryStoreCascadeDelete(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	student, err := st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Asha"))
	require.NoError(t, err)
	other, err := st.Insert(ctx, CollectionStudents, studentRow("ADM002", "Rohan"))
	require.NoError(t, err)
	subject, err := st.Insert(ctx, CollectionSubjects, Row{"code": "CS101", "name": "Programming", "credits": 4})
	require.NoError(t, err)

	_, err = st.Insert(ctx, CollectionMarks, Row{
		"student_id": student.String("id"),
		"subject_id": subject.String("id"),
		"semester":   1, "marks": 80, "max_marks": 100,
	})
	require.NoError(t, err)
	_, err = st.Insert(ctx, CollectionMarks, Row{
		"student_id": other.String("id"),
		"subject_id": subject.String("id"),
		"semester":   1, "marks": 70, "max_marks": 100,
	})
	require.NoError(t, err)
	_, err = st.Upsert(ctx, CollectionAttendance, Row{
		"student_id": student.String("id"),
		"subject_id": subject.String("id"),
		"date":       "2026-02-03",
		"present":    true,
	}, []string{"student_id", "subject_id", "date"})
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, CollectionStudents, student.String("id")))

	marks, err := st.Query(ctx, CollectionMarks, Options{})
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, other.String("id"), marks[0].String("student_id"))

	attendance, err := st.Query(ctx, CollectionAttendance, Options{})
	require.NoError(t, err)
	assert.Empty(t, attendance)
}

func TestMemoryStoreCheckConstraints(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	mark, err := st.Insert(ctx, CollectionMarks, Row{
		"student_id": "s1", "subject_id": "c1",
		"semester": 1, "marks": 80, "max_marks": 100,
	})
	require.NoError(t, err)

	// A one-sided patch pushing marks past the stored max_marks is rejected
	// the way the schema's CHECK rejects it.
	_, err = st.Update(ctx, CollectionMarks, mark.String("id"), Row{"marks": 150})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = st.Update(ctx, CollectionMarks, mark.String("id"), Row{"marks": 100})
	require.NoError(t, err)

	_, err = st.Insert(ctx, CollectionMarks, Row{
		"student_id": "s1", "subject_id": "c1",
		"semester": 13, "marks": 10, "max_marks": 100,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = st.Insert(ctx, CollectionStudents, studentRow("ADM001", "Asha"))
	require.NoError(t, err)
	_, err = st.Insert(ctx, CollectionStudents, Row{"admission_no": "ADM002", "first_name": "Rohan", "year": 0})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestMemoryStoreQueryFiltersAndOrdering(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, r := range []Row{
		{"student_id": "s1", "subject_id": "c1", "date": "2026-02-01", "present": true},
		{"student_id": "s1", "subject_id": "c1", "date": "2026-02-03", "present": true},
		{"student_id": "s2", "subject_id": "c1", "date": "2026-02-02", "present": false},
	} {
		_, err := st.Insert(ctx, CollectionAttendance, r)
		require.NoError(t, err)
	}

	rows, err := st.Query(ctx, CollectionAttendance, Options{
		Filters: []Filter{Eq("student_id", "s1")},
		OrderBy: Desc("date"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-02-03", rows[0].String("date"))
	assert.Equal(t, "2026-02-01", rows[1].String("date"))
}

func TestMemoryStoreUpdateMissingRow(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Update(ctx, CollectionStudents, "nope", Row{"first_name": "X"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	err = st.Delete(ctx, CollectionStudents, "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
