// Package authz defines the single authorization rule set as a pure
// capability check, callable identically from HTTP gating and from any
// other enforcement point.
package authz

import "github.com/adeldevs/campus-flare-85986/internal/models"

// Action is something a caller wants to do to a resource.
type Action string

const (
	EventCreate      Action = "event:create"
	EventUpdate      Action = "event:update"
	EventDelete      Action = "event:delete"
	EventToggle      Action = "event:toggle-status"
	EventViewDraft   Action = "event:view-draft"
	EventRegistrants Action = "event:list-registrants"
	EventRegister    Action = "event:register"
	RequestSubmit    Action = "request:submit"
	RequestReview    Action = "request:review"
)

// Resource identifies what the action targets. OwnerID is the UID of
// the resource creator; it is empty for actions without a target.
type Resource struct {
	OwnerID string
}

// Can reports whether the profile may perform action on resource.
// A nil profile (anonymous caller) is always denied.
func Can(p *models.UserProfile, action Action, res Resource) bool {
	if p == nil {
		return false
	}
	switch action {
	case EventCreate:
		return p.IsAdmin()
	case EventUpdate, EventDelete, EventToggle, EventViewDraft, EventRegistrants:
		return p.Role == models.RoleUltimateAdmin || p.UID == res.OwnerID
	case EventRegister:
		return true
	case RequestSubmit:
		return p.Role == models.RoleUser
	case RequestReview:
		return p.Role == models.RoleUltimateAdmin
	}
	return false
}
