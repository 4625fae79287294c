package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/identity"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/store"
)

// fakeProvider drives the resolver from tests by firing session change
// notifications directly.
type fakeProvider struct {
	session  *identity.Session
	handlers []identity.Handler
}

func (f *fakeProvider) CurrentSession(_ context.Context) (*identity.Session, error) {
	return f.session, nil
}

func (f *fakeProvider) OnSessionChange(handler identity.Handler) {
	f.handlers = append(f.handlers, handler)
}

func (f *fakeProvider) SignIn(_ context.Context, _ identity.Credentials) (*identity.Session, error) {
	return f.session, nil
}

func (f *fakeProvider) SignUp(_ context.Context, creds identity.Credentials) (*identity.Identity, error) {
	return &identity.Identity{UserID: "new-user", Email: creds.Email}, nil
}

func (f *fakeProvider) SignOut(_ context.Context) error {
	f.emit(nil)
	return nil
}

func (f *fakeProvider) emit(s *identity.Session) {
	f.session = s
	for _, h := range f.handlers {
		h(s)
	}
}

func insertProfile(t *testing.T, st store.Store, userID string, role models.Role) {
	t.Helper()
	profile := models.Profile{ID: userID, Email: userID + "@example.com", Role: role}
	_, err := st.Insert(context.Background(), store.CollectionProfiles, profile.ToRow())
	require.NoError(t, err)
}

func TestResolverStartsUnauthenticated(t *testing.T) {
	r := NewResolver(&fakeProvider{}, store.NewMemoryStore())

	sess, state := r.Current()
	assert.Equal(t, StateUnauthenticated, state)
	assert.False(t, sess.Authenticated())
}

func TestResolverReadyWithProfile(t *testing.T) {
	st := store.NewMemoryStore()
	insertProfile(t, st, "u1", models.RoleFaculty)
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	sess, state := r.Current()
	assert.Equal(t, StateReady, state)
	assert.Equal(t, models.RoleFaculty, sess.Role)
	assert.Equal(t, "u1", sess.UserID)
}

func TestResolverRoleUnknownWithoutProfile(t *testing.T) {
	provider := &fakeProvider{}
	r := NewResolver(provider, store.NewMemoryStore())

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	sess, state := r.Current()
	assert.Equal(t, StateRoleUnknown, state)
	assert.Equal(t, models.RoleUnknown, sess.Role)
	assert.True(t, sess.Authenticated(), "signed in but not yet role-resolved")
}

func TestResolverInvalidPersistedRoleTreatedAsMissing(t *testing.T) {
	st := store.NewMemoryStore()
	_, err := st.Insert(context.Background(), store.CollectionProfiles, store.Row{
		"id": "u1", "email": "u1@example.com", "full_name": "", "role": "superuser",
	})
	require.NoError(t, err)
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	_, state := r.Current()
	assert.Equal(t, StateRoleUnknown, state)
}

func TestResolverSignOutClearsSession(t *testing.T) {
	st := store.NewMemoryStore()
	insertProfile(t, st, "u1", models.RoleAdmin)
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})
	require.NoError(t, provider.SignOut(context.Background()))

	sess, state := r.Current()
	assert.Equal(t, StateUnauthenticated, state)
	assert.False(t, sess.Authenticated())
	assert.Equal(t, models.RoleUnknown, sess.Role)
}

func TestResolverChooseRole(t *testing.T) {
	st := store.NewMemoryStore()
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})
	require.NoError(t, r.ChooseRole(context.Background(), models.RoleFaculty))

	sess, state := r.Current()
	assert.Equal(t, StateReady, state)
	assert.Equal(t, models.RoleFaculty, sess.Role)

	// The choice is persisted: a fresh resolution finds the profile.
	resolved, err := r.ResolveUser(context.Background(), "u1", "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, resolved.Role)
}

func TestResolverChooseRoleRejectedWhenReady(t *testing.T) {
	st := store.NewMemoryStore()
	insertProfile(t, st, "u1", models.RoleStudent)
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	err := r.ChooseRole(context.Background(), models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	sess, _ := r.Current()
	assert.Equal(t, models.RoleStudent, sess.Role, "an assigned role is never overwritten")
}

func TestResolverChooseRoleInvalidRole(t *testing.T) {
	provider := &fakeProvider{}
	r := NewResolver(provider, store.NewMemoryStore())
	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	err := r.ChooseRole(context.Background(), models.Role("superuser"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestResolverChooseRoleConflictAdoptsPersisted(t *testing.T) {
	st := store.NewMemoryStore()
	provider := &fakeProvider{}
	r := NewResolver(provider, st)
	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})

	// Another session of the same user persisted its choice first.
	insertProfile(t, st, "u1", models.RoleStudent)

	require.NoError(t, r.ChooseRole(context.Background(), models.RoleFaculty))

	sess, state := r.Current()
	assert.Equal(t, StateReady, state)
	assert.Equal(t, models.RoleStudent, sess.Role, "the first persisted choice wins")
}

func TestResolverLastSessionWins(t *testing.T) {
	st := store.NewMemoryStore()
	insertProfile(t, st, "u1", models.RoleStudent)
	insertProfile(t, st, "u2", models.RoleAdmin)
	provider := &fakeProvider{}
	r := NewResolver(provider, st)

	provider.emit(&identity.Session{UserID: "u1", Email: "u1@example.com"})
	provider.emit(&identity.Session{UserID: "u2", Email: "u2@example.com"})

	sess, state := r.Current()
	assert.Equal(t, StateReady, state)
	assert.Equal(t, "u2", sess.UserID)
	assert.Equal(t, models.RoleAdmin, sess.Role)
}

func TestResolveUserStateless(t *testing.T) {
	st := store.NewMemoryStore()
	insertProfile(t, st, "u1", models.RoleFaculty)
	r := NewResolver(&fakeProvider{}, st)

	resolved, err := r.ResolveUser(context.Background(), "u1", "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, resolved.Role)

	// Per-request resolution leaves the resolver's own state untouched.
	_, state := r.Current()
	assert.Equal(t, StateUnauthenticated, state)

	missing, err := r.ResolveUser(context.Background(), "ghost", "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUnknown, missing.Role)
}

func TestRegisterProfileIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	r := NewResolver(&fakeProvider{}, st)
	ctx := context.Background()

	require.NoError(t, r.RegisterProfile(ctx, "u1", "u1@example.com", "Asha Verma", models.RoleStudent))
	// A repeat registration hits the id conflict and is swallowed.
	require.NoError(t, r.RegisterProfile(ctx, "u1", "u1@example.com", "Asha Verma", models.RoleFaculty))

	resolved, err := r.ResolveUser(ctx, "u1", "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, resolved.Role, "the first registration wins")
}
