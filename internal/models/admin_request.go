package models

import "time"

// RequestStatus is the review state of an admin application.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether the status can no longer change.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// MinReasonLength is the minimum justification length for an admin
// application; shorter submissions are rejected before any write.
const MinReasonLength = 50

// AdminRequest is a one-shot application for the lowLevelAdmin role.
// UserName and UserEmail are a snapshot of the requester at submission
// time and do not track later profile changes.
type AdminRequest struct {
	ID         string        `firestore:"-" json:"id"`
	UserID     string        `firestore:"userId" json:"userId"`
	UserName   string        `firestore:"userName" json:"userName"`
	UserEmail  string        `firestore:"userEmail" json:"userEmail"`
	Reason     string        `firestore:"reason" json:"reason"`
	Status     RequestStatus `firestore:"status" json:"status"`
	CreatedAt  time.Time     `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	ReviewedAt *time.Time    `firestore:"reviewedAt" json:"reviewedAt,omitempty"`
	ReviewedBy *string       `firestore:"reviewedBy" json:"reviewedBy,omitempty"`
}
