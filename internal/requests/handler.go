package requests

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adeldevs/campus-flare-85986/internal/authz"
	"github.com/adeldevs/campus-flare-85986/internal/middleware"
	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
)

// RoleSetter promotes a user profile to a new role.
type RoleSetter interface {
	SetRole(ctx context.Context, uid string, role models.Role) error
}

// SubmitRequest is the body for POST /admin-requests.
type SubmitRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Handler handles admin-request HTTP endpoints.
type Handler struct {
	store  Store
	users  RoleSetter
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates an admin-request handler.
func NewHandler(store Store, users RoleSetter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, users: users, logger: logger, now: time.Now}
}

// Submit handles POST /admin-requests. Only plain users may apply, the
// justification must carry at least the minimum length, and a user who
// already has a request on file, whatever its status, gets a conflict.
// The existence check and the create are separate reads, so a racing
// duplicate can slip through; the check is best effort.
func (h *Handler) Submit(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if !authz.Can(profile, authz.RequestSubmit, authz.Resource{}) {
		response.Forbidden(c, "only regular users may apply for the admin role")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if utf8.RuneCountInString(req.Reason) < models.MinReasonLength {
		response.BadRequest(c, "reason must be at least 50 characters")
		return
	}

	if _, err := h.store.GetByUser(c.Request.Context(), profile.UID); err == nil {
		response.Conflict(c, "an admin request already exists for this user")
		return
	} else if !errors.Is(err, models.ErrRequestNotFound) {
		h.logger.Error("check existing request failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to submit request")
		return
	}

	ar := &models.AdminRequest{
		UserID:    profile.UID,
		UserName:  profile.DisplayName,
		UserEmail: profile.Email,
		Reason:    req.Reason,
		Status:    models.RequestPending,
	}
	id, err := h.store.Create(c.Request.Context(), ar)
	if err != nil {
		h.logger.Error("create admin request failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to submit request")
		return
	}
	ar.ID = id
	h.logger.Info("admin request submitted", zap.String("request_id", id), zap.String("uid", profile.UID))
	response.Created(c, ar)
}

// MyRequest handles GET /users/me/admin-request, so applicants can see
// where their application stands.
func (h *Handler) MyRequest(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	ar, err := h.store.GetByUser(c.Request.Context(), profile.UID)
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			response.NotFound(c, "no admin request on file")
			return
		}
		h.logger.Error("get own request failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to load request")
		return
	}
	response.OK(c, ar)
}

// List handles GET /admin-requests, newest first, for ultimate admins.
func (h *Handler) List(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if !authz.Can(profile, authz.RequestReview, authz.Resource{}) {
		response.Forbidden(c, "ultimate admin role required")
		return
	}
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list admin requests failed", zap.Error(err))
		response.Internal(c, "failed to list requests")
		return
	}
	if list == nil {
		list = []models.AdminRequest{}
	}
	response.OK(c, list)
}

// Approve handles POST /admin-requests/:id/approve. The role promotion
// is written before the request status: if the second write fails the
// request stays pending and a retried approval converges, since
// granting an already-granted role is harmless.
func (h *Handler) Approve(c *gin.Context) {
	reviewer, ar, ok := h.reviewable(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.users.SetRole(ctx, ar.UserID, models.RoleLowLevelAdmin); err != nil {
		h.logger.Error("grant role failed", zap.Error(err), zap.String("request_id", ar.ID))
		response.Internal(c, "failed to approve request")
		return
	}
	at := h.now().UTC()
	if err := h.store.SetReviewed(ctx, ar.ID, models.RequestApproved, reviewer.UID, at); err != nil {
		h.logger.Error("finalize approval failed, role already granted",
			zap.Error(err), zap.String("request_id", ar.ID))
		response.Internal(c, "failed to approve request")
		return
	}
	ar.Status = models.RequestApproved
	ar.ReviewedAt = &at
	ar.ReviewedBy = &reviewer.UID
	h.logger.Info("admin request approved",
		zap.String("request_id", ar.ID),
		zap.String("uid", ar.UserID),
		zap.String("reviewer", reviewer.UID))
	response.OK(c, ar)
}

// Reject handles POST /admin-requests/:id/reject. The applicant's role
// is untouched.
func (h *Handler) Reject(c *gin.Context) {
	reviewer, ar, ok := h.reviewable(c)
	if !ok {
		return
	}
	at := h.now().UTC()
	if err := h.store.SetReviewed(c.Request.Context(), ar.ID, models.RequestRejected, reviewer.UID, at); err != nil {
		h.logger.Error("reject request failed", zap.Error(err), zap.String("request_id", ar.ID))
		response.Internal(c, "failed to reject request")
		return
	}
	ar.Status = models.RequestRejected
	ar.ReviewedAt = &at
	ar.ReviewedBy = &reviewer.UID
	h.logger.Info("admin request rejected",
		zap.String("request_id", ar.ID),
		zap.String("reviewer", reviewer.UID))
	response.OK(c, ar)
}

// reviewable loads the :id request and gates it for review: ultimate
// admins only, and a request already decided answers 409.
func (h *Handler) reviewable(c *gin.Context) (*models.UserProfile, *models.AdminRequest, bool) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, nil, false
	}
	if !authz.Can(profile, authz.RequestReview, authz.Resource{}) {
		response.Forbidden(c, "ultimate admin role required")
		return nil, nil, false
	}
	ar, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrRequestNotFound) {
			response.NotFound(c, "request not found")
			return nil, nil, false
		}
		h.logger.Error("get admin request failed", zap.Error(err), zap.String("request_id", c.Param("id")))
		response.Internal(c, "failed to load request")
		return nil, nil, false
	}
	if ar.Status.Terminal() {
		response.Conflict(c, "request has already been reviewed")
		return nil, nil, false
	}
	return profile, ar, true
}
