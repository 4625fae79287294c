package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/store"
)

func TestNormalizeSubjectCode(t *testing.T) {
	assert.Equal(t, "CS101", NormalizeSubjectCode("cs101"))
	assert.Equal(t, "CS101", NormalizeSubjectCode("  Cs101 "))
	assert.Equal(t, "", NormalizeSubjectCode("   "))
}

func TestSubjectCreateNormalizesCode(t *testing.T) {
	repo := NewSubjectRepository(store.NewMemoryStore())
	ctx := context.Background()

	err := repo.Create(ctx, adminSession, models.Subject{Code: "cs101", Name: "Programming", Credits: 4})
	require.NoError(t, err)

	subjects, err := repo.List(ctx, studentSession)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "CS101", subjects[0].Code)
}

func TestSubjectCodeCollisionAcrossCase(t *testing.T) {
	repo := NewSubjectRepository(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, adminSession, models.Subject{Code: "CS101", Name: "Programming"}))

	// Same code in different case normalizes to the stored one and conflicts.
	err := repo.Create(ctx, adminSession, models.Subject{Code: "cs101", Name: "Other"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestSubjectCreateDeniedWithoutAdmin(t *testing.T) {
	counting := newCountingStore(store.NewMemoryStore())
	repo := NewSubjectRepository(counting)
	ctx := context.Background()

	err := repo.Create(ctx, facultySession, models.Subject{Code: "CS101", Name: "Programming"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	assert.Zero(t, counting.calls)
}

func TestSubjectUpdateNormalizesCode(t *testing.T) {
	repo := NewSubjectRepository(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, adminSession, models.Subject{Code: "CS101", Name: "Programming"}))
	subjects, err := repo.List(ctx, adminSession)
	require.NoError(t, err)
	id := subjects[0].ID

	require.NoError(t, repo.Update(ctx, adminSession, id, SubjectPatch{Code: strPtr("ma102")}))

	subjects, err = repo.List(ctx, adminSession)
	require.NoError(t, err)
	assert.Equal(t, "MA102", subjects[0].Code)
	assert.Equal(t, "Programming", subjects[0].Name)
}
