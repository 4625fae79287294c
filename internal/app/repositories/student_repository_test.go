package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/session"
	"github.com/rahul/acadcore/internal/store"
)

func TestStudentCreateAndList(t *testing.T) {
	repo := NewStudentRepository(store.NewMemoryStore())
	ctx := context.Background()

	err := repo.Create(ctx, adminSession, models.Student{
		AdmissionNo: "  ADM001  ",
		FirstName:   "Asha",
		Branch:      "CSE",
		Year:        2,
	})
	require.NoError(t, err)

	students, err := repo.List(ctx, studentSession)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "ADM001", students[0].AdmissionNo, "admission number is trimmed before storage")
	assert.NotEmpty(t, students[0].ID)
}

func TestStudentCreateDeniedWithoutAdmin(t *testing.T) {
	counting := newCountingStore(store.NewMemoryStore())
	repo := NewStudentRepository(counting)
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		sess session.Session
	}{
		{"faculty", facultySession},
		{"student", studentSession},
		{"unknown role", unknownSession},
	} {
		err := repo.Create(ctx, tt.sess, models.Student{AdmissionNo: "ADM001", FirstName: "Asha"})
		require.Error(t, err, tt.name)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err), tt.name)
	}

	assert.Zero(t, counting.calls, "denied creates must not contact the store")
}

func TestStudentCreateValidation(t *testing.T) {
	counting := newCountingStore(store.NewMemoryStore())
	repo := NewStudentRepository(counting)
	ctx := context.Background()

	err := repo.Create(ctx, adminSession, models.Student{AdmissionNo: "", FirstName: "Asha"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	err = repo.Create(ctx, adminSession, models.Student{AdmissionNo: "ADM001", FirstName: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Zero(t, counting.calls, "invalid creates must not contact the store")
}

func TestStudentDuplicateAdmissionNo(t *testing.T) {
	repo := NewStudentRepository(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, adminSession, models.Student{AdmissionNo: "ADM001", FirstName: "Asha"}))

	err := repo.Create(ctx, adminSession, models.Student{AdmissionNo: "ADM001", FirstName: "Rohan"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestStudentPartialUpdate(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewStudentRepository(st)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, adminSession, models.Student{
		AdmissionNo: "ADM001", FirstName: "Asha", Branch: "CSE", Year: 1,
	}))
	students, err := repo.List(ctx, adminSession)
	require.NoError(t, err)
	id := students[0].ID

	err = repo.Update(ctx, adminSession, id, StudentPatch{Year: intPtr(2)})
	require.NoError(t, err)

	students, err = repo.List(ctx, adminSession)
	require.NoError(t, err)
	assert.Equal(t, 2, students[0].Year)
	assert.Equal(t, "Asha", students[0].FirstName, "untouched fields survive a partial update")
	assert.Equal(t, "CSE", students[0].Branch)
}

func TestStudentPatchValidation(t *testing.T) {
	counting := newCountingStore(store.NewMemoryStore())
	repo := NewStudentRepository(counting)
	ctx := context.Background()

	err := repo.Update(ctx, adminSession, "some-id", StudentPatch{Year: intPtr(0)})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	err = repo.Update(ctx, adminSession, "some-id", StudentPatch{AdmissionNo: strPtr("  ")})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Zero(t, counting.calls)
}

func TestStudentDeleteCascades(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewStudentRepository(st)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, adminSession, models.Student{AdmissionNo: "ADM001", FirstName: "Asha"}))
	students, err := repo.List(ctx, adminSession)
	require.NoError(t, err)
	studentID := students[0].ID

	_, err = st.Insert(ctx, store.CollectionMarks, store.Row{
		"student_id": studentID, "subject_id": "c1", "semester": 1, "marks": 80, "max_marks": 100,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, adminSession, studentID))

	marks, err := st.Query(ctx, store.CollectionMarks, store.Options{})
	require.NoError(t, err)
	assert.Empty(t, marks, "dependent marks are removed with the student")
}
