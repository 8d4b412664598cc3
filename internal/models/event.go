package models

import "time"

// EventStatus is the visibility state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
)

// Toggled returns the opposite status; draft and published are the only
// states and the transition is symmetric and repeatable.
func (s EventStatus) Toggled() EventStatus {
	if s == EventPublished {
		return EventDraft
	}
	return EventPublished
}

// EventCategory is the closed set of primary categories.
type EventCategory string

const (
	CategorySeminar     EventCategory = "seminar"
	CategoryFest        EventCategory = "fest"
	CategoryWorkshop    EventCategory = "workshop"
	CategoryCompetition EventCategory = "competition"
	CategoryCultural    EventCategory = "cultural"
	CategorySports      EventCategory = "sports"
	CategoryOther       EventCategory = "other"
)

// Valid reports whether the category is one of the known values.
func (c EventCategory) Valid() bool {
	switch c {
	case CategorySeminar, CategoryFest, CategoryWorkshop, CategoryCompetition,
		CategoryCultural, CategorySports, CategoryOther:
		return true
	}
	return false
}

// EntryFee describes the cost of attending. Amount is meaningful only
// when IsFree is false; it is stored as an explicit null otherwise.
type EntryFee struct {
	IsFree bool     `firestore:"isFree" json:"isFree"`
	Amount *float64 `firestore:"amount" json:"amount"`
}

// ContactInfo holds optional organizer contact details.
type ContactInfo struct {
	Email *string `firestore:"email" json:"email"`
	Phone *string `firestore:"phone" json:"phone"`
}

// MediaLinks holds optional social media URLs for an event.
type MediaLinks struct {
	Instagram *string `firestore:"instagram" json:"instagram"`
	Facebook  *string `firestore:"facebook" json:"facebook"`
	YouTube   *string `firestore:"youtube" json:"youtube"`
}

// Event is a schedulable, publishable campus activity.
//
// CreatedBy/CreatedByName are a snapshot of the creator taken at
// creation time; they deliberately do not follow later profile changes.
// Absent optional fields are stored as explicit nulls, never omitted.
type Event struct {
	ID                       string        `firestore:"-" json:"id"`
	Title                    string        `firestore:"title" json:"title"`
	Description              string        `firestore:"description" json:"description"`
	Date                     time.Time     `firestore:"date" json:"date"`
	Time                     string        `firestore:"time" json:"time"`
	Location                 string        `firestore:"location" json:"location"`
	MapLink                  *string       `firestore:"mapLink" json:"mapLink"`
	BannerURL                string        `firestore:"bannerURL" json:"bannerURL"`
	Category                 EventCategory `firestore:"category" json:"category"`
	Categories               []string      `firestore:"categories" json:"categories"`
	EntryFee                 EntryFee      `firestore:"entryFee" json:"entryFee"`
	PrizeAmount              *float64      `firestore:"prizeAmount" json:"prizeAmount"`
	ContactInfo              ContactInfo   `firestore:"contactInfo" json:"contactInfo"`
	ExternalRegistrationLink *string       `firestore:"externalRegistrationLink" json:"externalRegistrationLink"`
	MediaLinks               MediaLinks    `firestore:"mediaLinks" json:"mediaLinks"`
	HowToRegisterLink        *string       `firestore:"howToRegisterLink" json:"howToRegisterLink"`
	CreatedBy                string        `firestore:"createdBy" json:"createdBy"`
	CreatedByName            string        `firestore:"createdByName" json:"createdByName"`
	Status                   EventStatus   `firestore:"status" json:"status"`
	Registrations            []string      `firestore:"registrations" json:"registrations"`
	CreatedAt                time.Time     `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt                time.Time     `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// IsRegistered reports whether the given identity is in the registrant set.
func (e *Event) IsRegistered(uid string) bool {
	for _, id := range e.Registrations {
		if id == uid {
			return true
		}
	}
	return false
}
