package events

import (
	"errors"
	"strings"
	"time"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

const dateLayout = "2006-01-02"

var (
	errBadDate     = errors.New("date must be formatted as YYYY-MM-DD")
	errBadCategory = errors.New("unknown event category")
)

// feePayload mirrors the client's entry fee shape.
type feePayload struct {
	IsFree bool     `json:"isFree"`
	Amount *float64 `json:"amount"`
}

// eventPayload is the client-supplied content of an event; the same
// shape serves create and full update. Lifecycle fields (status,
// banner, registrant set, creator snapshot) are never client-writable.
type eventPayload struct {
	Title                    string     `json:"title" binding:"required"`
	Description              string     `json:"description" binding:"required"`
	Date                     string     `json:"date" binding:"required"`
	Time                     string     `json:"time" binding:"required"`
	Location                 string     `json:"location" binding:"required"`
	Category                 string     `json:"category" binding:"required"`
	Categories               []string   `json:"categories"`
	MapLink                  string     `json:"mapLink"`
	EntryFee                 feePayload `json:"entryFee"`
	PrizeAmount              *float64   `json:"prizeAmount"`
	ContactEmail             string     `json:"contactEmail"`
	ContactPhone             string     `json:"contactPhone"`
	ExternalRegistrationLink string     `json:"externalRegistrationLink"`
	InstagramLink            string     `json:"instagramLink"`
	FacebookLink             string     `json:"facebookLink"`
	YouTubeLink              string     `json:"youtubeLink"`
	HowToRegisterLink        string     `json:"howToRegisterLink"`
}

// normalize validates the payload and maps it onto an event's content
// fields. Blank optional strings become nil so they persist as explicit
// nulls, and a free event never carries a fee amount.
func (p *eventPayload) normalize() (*models.Event, error) {
	date, err := time.Parse(dateLayout, p.Date)
	if err != nil {
		return nil, errBadDate
	}
	category := models.EventCategory(p.Category)
	if !category.Valid() {
		return nil, errBadCategory
	}
	fee := models.EntryFee{IsFree: p.EntryFee.IsFree}
	if !fee.IsFree {
		fee.Amount = p.EntryFee.Amount
	}
	return &models.Event{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Date:        date,
		Time:        p.Time,
		Location:    strings.TrimSpace(p.Location),
		MapLink:     optional(p.MapLink),
		Category:    category,
		Categories:  p.Categories,
		EntryFee:    fee,
		PrizeAmount: p.PrizeAmount,
		ContactInfo: models.ContactInfo{
			Email: optional(p.ContactEmail),
			Phone: optional(p.ContactPhone),
		},
		ExternalRegistrationLink: optional(p.ExternalRegistrationLink),
		MediaLinks: models.MediaLinks{
			Instagram: optional(p.InstagramLink),
			Facebook:  optional(p.FacebookLink),
			YouTube:   optional(p.YouTubeLink),
		},
		HowToRegisterLink: optional(p.HowToRegisterLink),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
