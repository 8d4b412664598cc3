package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adeldevs/campus-flare-85986/internal/authz"
	"github.com/adeldevs/campus-flare-85986/internal/middleware"
	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/pkg/cache"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
	"github.com/adeldevs/campus-flare-85986/pkg/storage"
)

// Uploader writes an object and returns its retrievable URI.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store   Store
	cache   *cache.Cache // nil when Redis is not configured
	uploads Uploader     // nil when no storage bucket is configured
	logger  *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(store Store, c *cache.Cache, uploads Uploader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, cache: c, uploads: uploads, logger: logger}
}

// Create handles POST /events. New events always start as drafts.
func (h *Handler) Create(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if !authz.Can(profile, authz.EventCreate, authz.Resource{}) {
		response.Forbidden(c, "admin role required to create events")
		return
	}

	var req eventPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ev, err := req.normalize()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ev.CreatedBy = profile.UID
	ev.CreatedByName = profile.DisplayName
	ev.Status = models.EventDraft
	ev.Registrations = []string{}

	id, err := h.store.Create(c.Request.Context(), ev)
	if err != nil {
		h.logger.Error("create event failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to create event")
		return
	}
	ev.ID = id
	h.logger.Info("event created", zap.String("event_id", id), zap.String("uid", profile.UID))
	response.Created(c, ev)
}

// Get handles GET /events/:id. A draft is invisible to everyone but its
// creator and ultimate admins; outsiders get the same 404 as a missing
// event so drafts cannot be probed for.
func (h *Handler) Get(c *gin.Context) {
	ev, ok := h.visibleEvent(c)
	if !ok {
		return
	}
	response.OK(c, ev)
}

// Update handles PUT /events/:id, a full overwrite of the content
// fields. Status, banner, and the registrant set survive unchanged.
func (h *Handler) Update(c *gin.Context) {
	profile, ev, ok := h.ownedEvent(c, authz.EventUpdate, "not allowed to edit this event")
	if !ok {
		return
	}

	var req eventPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := req.normalize()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.store.Update(c.Request.Context(), ev.ID, updated); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("update event failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to update event")
		return
	}
	h.invalidateListing(c.Request.Context())

	updated.ID = ev.ID
	updated.BannerURL = ev.BannerURL
	updated.CreatedBy = ev.CreatedBy
	updated.CreatedByName = ev.CreatedByName
	updated.Status = ev.Status
	updated.Registrations = ev.Registrations
	updated.CreatedAt = ev.CreatedAt
	h.logger.Info("event updated", zap.String("event_id", ev.ID), zap.String("uid", profile.UID))
	response.OK(c, updated)
}

// ToggleStatus handles PATCH /events/:id/status, flipping draft and
// published. The transition is repeatable in both directions and the
// registrant set is preserved across it.
func (h *Handler) ToggleStatus(c *gin.Context) {
	profile, ev, ok := h.ownedEvent(c, authz.EventToggle, "not allowed to change this event's status")
	if !ok {
		return
	}
	next := ev.Status.Toggled()
	if err := h.store.SetStatus(c.Request.Context(), ev.ID, next); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("toggle status failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to update event status")
		return
	}
	h.invalidateListing(c.Request.Context())
	h.logger.Info("event status toggled",
		zap.String("event_id", ev.ID),
		zap.String("status", string(next)),
		zap.String("uid", profile.UID))
	response.OK(c, gin.H{"id": ev.ID, "status": next})
}

// Delete handles DELETE /events/:id. Deletion is permanent and discards
// the registrant set with the event.
func (h *Handler) Delete(c *gin.Context) {
	profile, ev, ok := h.ownedEvent(c, authz.EventDelete, "not allowed to delete this event")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), ev.ID); err != nil {
		h.logger.Error("delete event failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to delete event")
		return
	}
	h.invalidateListing(c.Request.Context())
	h.logger.Info("event deleted", zap.String("event_id", ev.ID), zap.String("uid", profile.UID))
	response.NoContent(c)
}

// UploadBanner handles POST /events/:id/banner.
func (h *Handler) UploadBanner(c *gin.Context) {
	_, ev, ok := h.ownedEvent(c, authz.EventUpdate, "not allowed to edit this event")
	if !ok {
		return
	}
	if h.uploads == nil {
		response.ServiceUnavailable(c, "file uploads are not configured")
		return
	}

	file, err := c.FormFile("banner")
	if err != nil {
		response.BadRequest(c, "banner file required")
		return
	}
	if file.Size > storage.MaxImageSize {
		response.BadRequest(c, "banner exceeds maximum size")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "unreadable banner file")
		return
	}
	defer src.Close()

	bannerURL, err := h.uploads.Upload(c.Request.Context(), storage.BannerKey(file.Filename), contentType, src)
	if err != nil {
		h.logger.Error("banner upload failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to upload banner")
		return
	}
	if err := h.store.SetBannerURL(c.Request.Context(), ev.ID, bannerURL); err != nil {
		h.logger.Error("save banner url failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to save banner")
		return
	}
	h.invalidateListing(c.Request.Context())
	response.OK(c, gin.H{"bannerURL": bannerURL})
}

// Register handles POST /events/:id/register. Registering twice is a
// no-op; the registrant set never holds duplicates.
func (h *Handler) Register(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	ev, ok := h.visibleEvent(c)
	if !ok {
		return
	}
	if err := h.store.AddRegistrant(c.Request.Context(), ev.ID, profile.UID); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("register failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to register")
		return
	}
	h.logger.Info("registered for event", zap.String("event_id", ev.ID), zap.String("uid", profile.UID))
	response.OK(c, gin.H{"id": ev.ID, "registered": true})
}

// Unregister handles DELETE /events/:id/register. Removing an identity
// that never registered succeeds without effect.
func (h *Handler) Unregister(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	ev, ok := h.visibleEvent(c)
	if !ok {
		return
	}
	if err := h.store.RemoveRegistrant(c.Request.Context(), ev.ID, profile.UID); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("unregister failed", zap.Error(err), zap.String("event_id", ev.ID))
		response.Internal(c, "failed to unregister")
		return
	}
	response.OK(c, gin.H{"id": ev.ID, "registered": false})
}

// Registrants handles GET /events/:id/registrants, restricted to the
// event's creator and ultimate admins.
func (h *Handler) Registrants(c *gin.Context) {
	_, ev, ok := h.ownedEvent(c, authz.EventRegistrants, "not allowed to view this event's registrants")
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"id":            ev.ID,
		"count":         len(ev.Registrations),
		"registrations": ev.Registrations,
	})
}

// ListPublished handles GET /events, the public listing. Results come
// from the published-listing cache when warm and are ordered by event
// date descending. Category and limit filters apply after the cache so
// every filter combination shares one cached payload.
func (h *Handler) ListPublished(c *gin.Context) {
	ctx := c.Request.Context()
	list, ok := h.cachedListing(ctx)
	if !ok {
		var err error
		list, err = h.store.ListPublished(ctx)
		if err != nil {
			h.logger.Error("list published events failed", zap.Error(err))
			response.Internal(c, "failed to list events")
			return
		}
		h.storeListing(ctx, list)
	}

	if category := c.Query("category"); category != "" {
		list = filterByCategory(list, category)
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		if n < len(list) {
			list = list[:n]
		}
	}
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, list)
}

// ListManaged handles GET /admin/events: the caller's own events, or
// every event for an ultimate admin asking with ?all=1. Ordered by
// creation time, newest first.
func (h *Handler) ListManaged(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	if !profile.IsAdmin() {
		response.Forbidden(c, "admin role required")
		return
	}

	var (
		list []models.Event
		err  error
	)
	if profile.Role == models.RoleUltimateAdmin && c.Query("all") == "1" {
		list, err = h.store.ListAll(c.Request.Context())
	} else {
		list, err = h.store.ListByCreator(c.Request.Context(), profile.UID)
	}
	if err != nil {
		h.logger.Error("list managed events failed", zap.Error(err), zap.String("uid", profile.UID))
		response.Internal(c, "failed to list events")
		return
	}
	sortByCreatedAtDesc(list)
	if list == nil {
		list = []models.Event{}
	}
	response.OK(c, list)
}

// visibleEvent loads the :id event and applies draft visibility: drafts
// answer 404 unless the caller may view them.
func (h *Handler) visibleEvent(c *gin.Context) (*models.Event, bool) {
	ev, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return nil, false
		}
		h.logger.Error("get event failed", zap.Error(err), zap.String("event_id", c.Param("id")))
		response.Internal(c, "failed to load event")
		return nil, false
	}
	if ev.Status == models.EventDraft {
		profile, _ := middleware.ProfileFrom(c)
		if !authz.Can(profile, authz.EventViewDraft, authz.Resource{OwnerID: ev.CreatedBy}) {
			response.NotFound(c, "event not found")
			return nil, false
		}
	}
	return ev, true
}

// ownedEvent loads the :id event and gates it on a creator-or-ultimate
// action.
func (h *Handler) ownedEvent(c *gin.Context, action authz.Action, denied string) (*models.UserProfile, *models.Event, bool) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return nil, nil, false
	}
	ev, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			response.NotFound(c, "event not found")
			return nil, nil, false
		}
		h.logger.Error("get event failed", zap.Error(err), zap.String("event_id", c.Param("id")))
		response.Internal(c, "failed to load event")
		return nil, nil, false
	}
	if !authz.Can(profile, action, authz.Resource{OwnerID: ev.CreatedBy}) {
		response.Forbidden(c, denied)
		return nil, nil, false
	}
	return profile, ev, true
}

func (h *Handler) cachedListing(ctx context.Context) ([]models.Event, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok := h.cache.Get(ctx, cache.KeyPublishedEvents)
	if !ok {
		return nil, false
	}
	var list []models.Event
	if err := json.Unmarshal(b, &list); err != nil {
		h.logger.Warn("discarding malformed cached listing", zap.Error(err))
		return nil, false
	}
	return list, true
}

func (h *Handler) storeListing(ctx context.Context, list []models.Event) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(list)
	if err != nil {
		return
	}
	h.cache.Set(ctx, cache.KeyPublishedEvents, b)
}

func (h *Handler) invalidateListing(ctx context.Context) {
	if h.cache == nil {
		return
	}
	h.cache.Invalidate(ctx, cache.KeyPublishedEvents)
}

func filterByCategory(list []models.Event, category string) []models.Event {
	out := make([]models.Event, 0, len(list))
	for _, ev := range list {
		if string(ev.Category) == category {
			out = append(out, ev)
			continue
		}
		for _, extra := range ev.Categories {
			if extra == category {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func sortByCreatedAtDesc(list []models.Event) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
