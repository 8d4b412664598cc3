package users

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adeldevs/campus-flare-85986/internal/middleware"
	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
	"github.com/adeldevs/campus-flare-85986/pkg/storage"
)

// RegistrationLister lists the events an identity registered for.
type RegistrationLister interface {
	ListRegisteredFor(ctx context.Context, uid string) ([]models.Event, error)
}

// Uploader writes an object and returns its retrievable URI.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// UpdateMeRequest is the body for PATCH /users/me.
type UpdateMeRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

// Handler handles profile HTTP endpoints.
type Handler struct {
	store   Store
	events  RegistrationLister
	uploads Uploader // nil when no storage bucket is configured
	logger  *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(store Store, events RegistrationLister, uploads Uploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, events: events, uploads: uploads, logger: logger}
}

// Session handles GET /auth/session. The Auth middleware has already
// resolved (and possibly created or reconciled) the profile; this just
// hands it back so the frontend can restore its session.
func (h *Handler) Session(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	response.OK(c, profile)
}

// UpdateMe handles PATCH /users/me (display name only; role and email
// are never caller-editable).
func (h *Handler) UpdateMe(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.store.SetDisplayName(c.Request.Context(), profile.UID, req.DisplayName); err != nil {
		h.logger.Error("update display name failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to update profile")
		return
	}
	profile.DisplayName = req.DisplayName
	response.OK(c, profile)
}

// UploadAvatar handles POST /users/me/avatar. One object per identity,
// overwritten on each upload.
func (h *Handler) UploadAvatar(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if h.uploads == nil {
		response.ServiceUnavailable(c, "file uploads are not configured")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file required")
		return
	}
	if file.Size > storage.MaxImageSize {
		response.BadRequest(c, "avatar exceeds maximum size")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "unreadable avatar file")
		return
	}
	defer src.Close()

	photoURL, err := h.uploads.Upload(c.Request.Context(), storage.AvatarKey(profile.UID), contentType, src)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to upload avatar")
		return
	}
	if err := h.store.SetPhotoURL(c.Request.Context(), profile.UID, photoURL); err != nil {
		h.logger.Error("save avatar url failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to update profile")
		return
	}
	profile.PhotoURL = photoURL
	response.OK(c, gin.H{"photoURL": photoURL})
}

// MyRegistrations handles GET /users/me/registrations.
func (h *Handler) MyRegistrations(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.events.ListRegisteredFor(c.Request.Context(), profile.UID)
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}
