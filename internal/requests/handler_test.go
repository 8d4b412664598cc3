package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeldevs/campus-flare-85986/internal/middleware"
	"github.com/adeldevs/campus-flare-85986/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	byID         map[string]*models.AdminRequest
	nextID       int
	failReviewed bool
}

func newStubStore(reqs ...*models.AdminRequest) *stubStore {
	s := &stubStore{byID: map[string]*models.AdminRequest{}}
	for _, r := range reqs {
		s.byID[r.ID] = r
	}
	return s
}

func (s *stubStore) Create(_ context.Context, req *models.AdminRequest) (string, error) {
	s.nextID++
	id := fmt.Sprintf("req-%d", s.nextID)
	copied := *req
	copied.ID = id
	s.byID[id] = &copied
	return id, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*models.AdminRequest, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *stubStore) GetByUser(_ context.Context, uid string) (*models.AdminRequest, error) {
	for _, r := range s.byID {
		if r.UserID == uid {
			copied := *r
			return &copied, nil
		}
	}
	return nil, models.ErrRequestNotFound
}

func (s *stubStore) List(_ context.Context) ([]models.AdminRequest, error) {
	var list []models.AdminRequest
	for _, r := range s.byID {
		list = append(list, *r)
	}
	return list, nil
}

func (s *stubStore) SetReviewed(_ context.Context, id string, st models.RequestStatus, reviewer string, at time.Time) error {
	if s.failReviewed {
		return fmt.Errorf("store down")
	}
	r, ok := s.byID[id]
	if !ok {
		return models.ErrRequestNotFound
	}
	r.Status = st
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &at
	return nil
}

// stubRoles records SetRole calls in order relative to reviews.
type stubRoles struct {
	granted map[string]models.Role
	calls   []string
	fail    bool
}

func newStubRoles() *stubRoles {
	return &stubRoles{granted: map[string]models.Role{}}
}

func (s *stubRoles) SetRole(_ context.Context, uid string, role models.Role) error {
	if s.fail {
		return fmt.Errorf("store down")
	}
	s.granted[uid] = role
	s.calls = append(s.calls, uid)
	return nil
}

func asProfile(uid string, role models.Role) *models.UserProfile {
	return &models.UserProfile{UID: uid, Email: uid + "@example.edu", DisplayName: "Test " + uid, Role: role}
}

func router(h *Handler, profile *models.UserProfile) *gin.Engine {
	r := gin.New()
	if profile != nil {
		r.Use(func(c *gin.Context) { c.Set(middleware.ContextProfile, profile) })
	}
	r.POST("/admin-requests", h.Submit)
	r.GET("/admin-requests", h.List)
	r.POST("/admin-requests/:id/approve", h.Approve)
	r.POST("/admin-requests/:id/reject", h.Reject)
	r.GET("/users/me/admin-request", h.MyRequest)
	return r
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func longReason() string {
	return strings.Repeat("I organize the film society and need posting access. ", 2)
}

func TestSubmitRejectsShortReasonWithoutWriting(t *testing.T) {
	store := newStubStore()
	h := NewHandler(store, newStubRoles(), nil)
	reason := strings.Repeat("x", models.MinReasonLength-1)
	w := perform(t, router(h, asProfile("u1", models.RoleUser)), http.MethodPost, "/admin-requests", gin.H{"reason": reason})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.byID, "short submissions must not reach the store")
}

func TestSubmitCountsRunesNotBytes(t *testing.T) {
	store := newStubStore()
	h := NewHandler(store, newStubRoles(), nil)
	// 50 multibyte runes, well over 50 bytes either way; the rune count
	// is what has to clear the bar.
	reason := strings.Repeat("ü", models.MinReasonLength)
	w := perform(t, router(h, asProfile("u1", models.RoleUser)), http.MethodPost, "/admin-requests", gin.H{"reason": reason})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitCreatesPendingWithSnapshot(t *testing.T) {
	store := newStubStore()
	h := NewHandler(store, newStubRoles(), nil)
	w := perform(t, router(h, asProfile("u1", models.RoleUser)), http.MethodPost, "/admin-requests", gin.H{"reason": longReason()})
	require.Equal(t, http.StatusCreated, w.Code)

	created := store.byID["req-1"]
	require.NotNil(t, created)
	assert.Equal(t, models.RequestPending, created.Status)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Test u1", created.UserName)
	assert.Equal(t, "u1@example.edu", created.UserEmail)
	assert.Nil(t, created.ReviewedAt)
}

func TestSubmitDeniedForAdmins(t *testing.T) {
	h := NewHandler(newStubStore(), newStubRoles(), nil)
	for _, role := range []models.Role{models.RoleLowLevelAdmin, models.RoleUltimateAdmin} {
		w := perform(t, router(h, asProfile("a1", role)), http.MethodPost, "/admin-requests", gin.H{"reason": longReason()})
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)
	}
}

func TestSubmitConflictsOnExistingRequest(t *testing.T) {
	for _, status := range []models.RequestStatus{models.RequestPending, models.RequestRejected} {
		store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: status})
		h := NewHandler(store, newStubRoles(), nil)
		w := perform(t, router(h, asProfile("u1", models.RoleUser)), http.MethodPost, "/admin-requests", gin.H{"reason": longReason()})
		assert.Equal(t, http.StatusConflict, w.Code, "existing %s request", status)
		assert.Len(t, store.byID, 1)
	}
}

func TestMyRequestReturnsOwnApplication(t *testing.T) {
	store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: models.RequestPending})
	h := NewHandler(store, newStubRoles(), nil)

	w := perform(t, router(h, asProfile("u1", models.RoleUser)), http.MethodGet, "/users/me/admin-request", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router(h, asProfile("u2", models.RoleUser)), http.MethodGet, "/users/me/admin-request", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRequiresUltimateAdmin(t *testing.T) {
	h := NewHandler(newStubStore(), newStubRoles(), nil)
	assert.Equal(t, http.StatusForbidden, perform(t, router(h, asProfile("a1", models.RoleLowLevelAdmin)), http.MethodGet, "/admin-requests", nil).Code)
	assert.Equal(t, http.StatusOK, perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodGet, "/admin-requests", nil).Code)
}

func TestApproveGrantsRoleThenFinalizes(t *testing.T) {
	store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: models.RequestPending})
	roles := newStubRoles()
	h := NewHandler(store, roles, nil)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	w := perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodPost, "/admin-requests/req-0/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, models.RoleLowLevelAdmin, roles.granted["u1"])
	reviewed := store.byID["req-0"]
	assert.Equal(t, models.RequestApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "boss", *reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, fixed, *reviewed.ReviewedAt)
}

func TestApproveLeavesRequestPendingWhenFinalizeFails(t *testing.T) {
	store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: models.RequestPending})
	store.failReviewed = true
	roles := newStubRoles()
	h := NewHandler(store, roles, nil)

	w := perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodPost, "/admin-requests/req-0/approve", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Role granted, request still pending: the retried approval converges.
	assert.Equal(t, models.RoleLowLevelAdmin, roles.granted["u1"])
	assert.Equal(t, models.RequestPending, store.byID["req-0"].Status)

	store.failReviewed = false
	w = perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodPost, "/admin-requests/req-0/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RequestApproved, store.byID["req-0"].Status)
}

func TestApproveDoesNotGrantRoleWhenRequestIsTerminal(t *testing.T) {
	for _, status := range []models.RequestStatus{models.RequestApproved, models.RequestRejected} {
		store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: status})
		roles := newStubRoles()
		h := NewHandler(store, roles, nil)
		w := perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodPost, "/admin-requests/req-0/approve", nil)
		assert.Equal(t, http.StatusConflict, w.Code, "reviewing a %s request", status)
		assert.Empty(t, roles.calls)
	}
}

func TestRejectNeverTouchesRole(t *testing.T) {
	store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: models.RequestPending})
	roles := newStubRoles()
	h := NewHandler(store, roles, nil)

	w := perform(t, router(h, asProfile("boss", models.RoleUltimateAdmin)), http.MethodPost, "/admin-requests/req-0/reject", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, roles.calls)
	assert.Equal(t, models.RequestRejected, store.byID["req-0"].Status)
}

func TestReviewDeniedForLowLevelAdmin(t *testing.T) {
	store := newStubStore(&models.AdminRequest{ID: "req-0", UserID: "u1", Status: models.RequestPending})
	h := NewHandler(store, newStubRoles(), nil)
	w := perform(t, router(h, asProfile("a1", models.RoleLowLevelAdmin)), http.MethodPost, "/admin-requests/req-0/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.RequestPending, store.byID["req-0"].Status)
}
