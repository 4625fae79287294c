// Package session owns the one Session value role gates are evaluated
// against. The resolver is a small state machine driven by identity-provider
// notifications; nothing else in the core reads ambient session state.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/identity"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
	"github.com/rahul/acadcore/internal/pkg/logger"
	"github.com/rahul/acadcore/internal/store"
)

// State enumerates the resolver states.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateRoleUnknown     State = "role_unknown"
	StateReady           State = "ready"
	StateSigningOut      State = "signing_out"
)

// Session is the resolved identity plus its assigned role. It is passed
// explicitly into repositories and view coordinators.
type Session struct {
	UserID string
	Email  string
	Role   models.Role
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Resolver resolves the identity-provider session to a role via the profiles
// collection. Last resolution wins: a lookup still in flight when a newer
// session arrives is discarded.
type Resolver struct {
	provider identity.Provider
	store    store.Store

	mu         sync.Mutex
	state      State
	current    Session
	generation uint64
}

// NewResolver creates a resolver and subscribes it to session changes.
func NewResolver(provider identity.Provider, st store.Store) *Resolver {
	r := &Resolver{
		provider: provider,
		store:    st,
		state:    StateUnauthenticated,
	}
	provider.OnSessionChange(func(s *identity.Session) {
		if err := r.apply(context.Background(), s); err != nil {
			logger.Warn().Err(err).Msg("session change resolution failed")
		}
	})
	return r
}

// Current returns the resolved session and the resolver state.
func (r *Resolver) Current() (Session, State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.state
}

// Resolve pulls the provider's current session and resolves its role. Used at
// startup and whenever a caller needs a fresh resolution.
func (r *Resolver) Resolve(ctx context.Context) (Session, error) {
	ident, err := r.provider.CurrentSession(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to read current session: %w", err)
	}
	if err := r.apply(ctx, ident); err != nil {
		return Session{}, err
	}
	session, _ := r.Current()
	return session, nil
}

// ResolveUser resolves a role for an already-verified user id without
// touching resolver state. Serves per-request resolution in the HTTP layer,
// where each bearer token is its own session.
func (r *Resolver) ResolveUser(ctx context.Context, userID, email string) (Session, error) {
	role, found, err := r.lookupRole(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{UserID: userID, Email: email, Role: models.RoleUnknown}, nil
	}
	return Session{UserID: userID, Email: email, Role: role}, nil
}

// apply transitions the machine for a new or cleared provider session.
func (r *Resolver) apply(ctx context.Context, ident *identity.Session) error {
	if ident == nil {
		r.mu.Lock()
		r.generation++
		r.state = StateSigningOut
		r.current = Session{}
		r.state = StateUnauthenticated
		r.mu.Unlock()
		return nil
	}

	r.mu.Lock()
	r.generation++
	generation := r.generation
	r.state = StateAuthenticating
	r.mu.Unlock()

	role, found, err := r.lookupRole(ctx, ident.UserID)

	r.mu.Lock()
	defer r.mu.Unlock()

	// A newer session superseded this lookup while it was in flight.
	if generation != r.generation {
		return apperrors.ErrSessionSuperseded
	}

	if err != nil {
		r.state = StateUnauthenticated
		r.current = Session{}
		return fmt.Errorf("role lookup failed: %w", err)
	}

	r.current = Session{UserID: ident.UserID, Email: ident.Email, Role: role}
	if !found {
		r.current.Role = models.RoleUnknown
		r.state = StateRoleUnknown
		return nil
	}

	r.state = StateReady
	return nil
}

// lookupRole reads the profile row for the user. found is false on a lookup
// miss, which routes the caller into the role-selection flow.
func (r *Resolver) lookupRole(ctx context.Context, userID string) (models.Role, bool, error) {
	rows, err := r.store.Query(ctx, store.CollectionProfiles, store.Options{
		Columns: []string{"id", "role"},
		Filters: []store.Filter{store.Eq("id", userID)},
	})
	if err != nil {
		return models.RoleUnknown, false, err
	}
	if len(rows) == 0 {
		return models.RoleUnknown, false, nil
	}

	role := models.Role(rows[0].String("role"))
	if !role.Valid() {
		return models.RoleUnknown, false, nil
	}
	return role, true, nil
}

// ChooseRole persists the chosen role and completes the RoleUnknown to Ready
// transition. A role is set exactly once; a conflicting concurrent choice is
// resolved by re-reading the profile row.
func (r *Resolver) ChooseRole(ctx context.Context, role models.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}

	r.mu.Lock()
	if r.state != StateRoleUnknown {
		state := r.state
		r.mu.Unlock()
		return apperrors.NewValidationError(fmt.Sprintf("role selection is not available in state %s", state))
	}
	generation := r.generation
	current := r.current
	r.mu.Unlock()

	profile := models.Profile{ID: current.UserID, Email: current.Email, Role: role}
	if _, err := r.store.Insert(ctx, store.CollectionProfiles, profile.ToRow()); err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			// Another session of the same user chose first; adopt the
			// persisted role.
			persisted, found, lookupErr := r.lookupRole(ctx, current.UserID)
			if lookupErr != nil || !found {
				return err
			}
			role = persisted
		} else {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return apperrors.ErrSessionSuperseded
	}
	r.current.Role = role
	r.state = StateReady
	return nil
}

// RegisterProfile creates the default profile row for a freshly signed-up
// identity. A conflict means the profile already exists and is not an error.
func (r *Resolver) RegisterProfile(ctx context.Context, userID, email, fullName string, role models.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown role %q", role))
	}
	profile := models.Profile{ID: userID, Email: email, FullName: fullName, Role: role}
	if _, err := r.store.Insert(ctx, store.CollectionProfiles, profile.ToRow()); err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return nil
		}
		return err
	}
	return nil
}
