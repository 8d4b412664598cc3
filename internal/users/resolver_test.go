package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

// stubStore is an in-memory Store; failGet simulates a store outage.
type stubStore struct {
	profiles  map[string]*models.UserProfile
	failGet   bool
	setRole   []string // "uid:role" calls, in order
	created   []string
	failWrite bool
}

func newStubStore() *stubStore {
	return &stubStore{profiles: map[string]*models.UserProfile{}}
}

func (s *stubStore) Get(_ context.Context, uid string) (*models.UserProfile, error) {
	if s.failGet {
		return nil, errors.New("store unavailable")
	}
	p, ok := s.profiles[uid]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *stubStore) Create(_ context.Context, p *models.UserProfile) error {
	if s.failWrite {
		return errors.New("store unavailable")
	}
	clone := *p
	s.profiles[p.UID] = &clone
	s.created = append(s.created, p.UID)
	return nil
}

func (s *stubStore) SetRole(_ context.Context, uid string, role models.Role) error {
	if s.failWrite {
		return errors.New("store unavailable")
	}
	s.profiles[uid].Role = role
	s.setRole = append(s.setRole, uid+":"+string(role))
	return nil
}

func (s *stubStore) SetDisplayName(_ context.Context, uid, name string) error {
	s.profiles[uid].DisplayName = name
	return nil
}

func (s *stubStore) SetPhotoURL(_ context.Context, uid, url string) error {
	s.profiles[uid].PhotoURL = url
	return nil
}

var pinned = []string{"root@campus.edu", "ops@campus.edu"}

func TestResolve_CreatesProfileOnFirstSignIn(t *testing.T) {
	store := newStubStore()
	r := NewResolver(store, pinned, nil)

	p, err := r.Resolve(context.Background(), Identity{
		UID: "u1", Email: "student@campus.edu", DisplayName: "A Student", PhotoURL: "http://img",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, p.Role)
	assert.Equal(t, "A Student", p.DisplayName)
	assert.Equal(t, "http://img", p.PhotoURL)
	assert.Equal(t, []string{"u1"}, store.created)
}

func TestResolve_PinnedEmailCreatedAsUltimateAdmin(t *testing.T) {
	store := newStubStore()
	r := NewResolver(store, pinned, nil)

	p, err := r.Resolve(context.Background(), Identity{UID: "boss", Email: "Root@Campus.EDU"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUltimateAdmin, p.Role)
}

func TestResolve_PinnedEmailReconciledOnEveryLoad(t *testing.T) {
	store := newStubStore()
	store.profiles["boss"] = &models.UserProfile{UID: "boss", Email: "root@campus.edu", Role: models.RoleUser}
	r := NewResolver(store, pinned, nil)

	p, err := r.Resolve(context.Background(), Identity{UID: "boss", Email: "root@campus.edu"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUltimateAdmin, p.Role)
	assert.Equal(t, []string{"boss:ultimateAdmin"}, store.setRole)
	assert.Equal(t, models.RoleUltimateAdmin, store.profiles["boss"].Role, "correction must be persisted")
}

func TestResolve_PinnedAlreadyUltimateDoesNotWrite(t *testing.T) {
	store := newStubStore()
	store.profiles["boss"] = &models.UserProfile{UID: "boss", Email: "root@campus.edu", Role: models.RoleUltimateAdmin}
	r := NewResolver(store, pinned, nil)

	_, err := r.Resolve(context.Background(), Identity{UID: "boss", Email: "root@campus.edu"})
	require.NoError(t, err)
	assert.Empty(t, store.setRole, "no reconciliation write when role already correct")
}

func TestResolve_StoredRoleKeptForOrdinaryUsers(t *testing.T) {
	store := newStubStore()
	store.profiles["a1"] = &models.UserProfile{UID: "a1", Email: "organizer@campus.edu", Role: models.RoleLowLevelAdmin}
	r := NewResolver(store, pinned, nil)

	p, err := r.Resolve(context.Background(), Identity{UID: "a1", Email: "organizer@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLowLevelAdmin, p.Role)
	assert.Empty(t, store.setRole)
}

func TestResolve_StoreErrorReportedWithoutRetry(t *testing.T) {
	store := newStubStore()
	store.failGet = true
	r := NewResolver(store, pinned, nil)

	_, err := r.Resolve(context.Background(), Identity{UID: "u1", Email: "student@campus.edu"})
	assert.Error(t, err)
	assert.Empty(t, store.created)
}

func TestResolve_CreateFailureReported(t *testing.T) {
	store := newStubStore()
	store.failWrite = true
	r := NewResolver(store, pinned, nil)

	_, err := r.Resolve(context.Background(), Identity{UID: "u1", Email: "student@campus.edu"})
	assert.Error(t, err)
}
