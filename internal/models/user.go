package models

import "time"

// Role represents a user's authorization level.
type Role string

const (
	RoleUser          Role = "user"
	RoleLowLevelAdmin Role = "lowLevelAdmin"
	RoleUltimateAdmin Role = "ultimateAdmin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLowLevelAdmin, RoleUltimateAdmin:
		return true
	}
	return false
}

// UserProfile is the stored profile for an authenticated identity.
// The Firestore document ID equals the identity UID; the uid field is
// also stored inside the document for array-contains style queries.
type UserProfile struct {
	UID         string    `firestore:"uid" json:"uid"`
	Email       string    `firestore:"email" json:"email"`
	DisplayName string    `firestore:"displayName" json:"displayName"`
	PhotoURL    string    `firestore:"photoURL" json:"photoURL"`
	Role        Role      `firestore:"role" json:"role"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// IsAdmin reports whether the profile may manage events at all.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && (p.Role == RoleLowLevelAdmin || p.Role == RoleUltimateAdmin)
}
