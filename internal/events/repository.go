package events

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

const collection = "events"

// Store is the event persistence surface the handlers need.
type Store interface {
	Create(ctx context.Context, ev *models.Event) (string, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, id string, ev *models.Event) error
	SetStatus(ctx context.Context, id string, s models.EventStatus) error
	SetBannerURL(ctx context.Context, id, bannerURL string) error
	Delete(ctx context.Context, id string) error
	AddRegistrant(ctx context.Context, id, uid string) error
	RemoveRegistrant(ctx context.Context, id, uid string) error
	ListPublished(ctx context.Context) ([]models.Event, error)
	ListByCreator(ctx context.Context, uid string) ([]models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	ListRegisteredFor(ctx context.Context, uid string) ([]models.Event, error)
}

// Repository is the Firestore-backed event store accessor.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates an event repository.
func NewRepository(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Create adds a new event document and returns its ID. Timestamps are
// server-assigned via the struct's serverTimestamp tags.
func (r *Repository) Create(ctx context.Context, ev *models.Event) (string, error) {
	ref, _, err := r.client.Collection(collection).Add(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	return ref.ID, nil
}

// Get returns the event by ID, or models.ErrEventNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*models.Event, error) {
	snap, err := r.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return decode(snap)
}

// Update overwrites the content fields of an event. Absent optional
// fields are written as explicit nulls, never omitted. Status, banner,
// the registrant set, and the creator snapshot are not touched here.
func (r *Repository) Update(ctx context.Context, id string, ev *models.Event) error {
	updates := []firestore.Update{
		{Path: "title", Value: ev.Title},
		{Path: "description", Value: ev.Description},
		{Path: "date", Value: ev.Date},
		{Path: "time", Value: ev.Time},
		{Path: "location", Value: ev.Location},
		{Path: "mapLink", Value: ev.MapLink},
		{Path: "category", Value: string(ev.Category)},
		{Path: "categories", Value: ev.Categories},
		{Path: "entryFee", Value: ev.EntryFee},
		{Path: "prizeAmount", Value: ev.PrizeAmount},
		{Path: "contactInfo", Value: ev.ContactInfo},
		{Path: "externalRegistrationLink", Value: ev.ExternalRegistrationLink},
		{Path: "mediaLinks", Value: ev.MediaLinks},
		{Path: "howToRegisterLink", Value: ev.HowToRegisterLink},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
	if _, err := r.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("update event %s: %w", id, err)
	}
	return nil
}

// SetStatus flips the lifecycle status.
func (r *Repository) SetStatus(ctx context.Context, id string, s models.EventStatus) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("set status for event %s: %w", id, err)
	}
	return nil
}

// SetBannerURL stores the uploaded banner's URI.
func (r *Repository) SetBannerURL(ctx context.Context, id, bannerURL string) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "bannerURL", Value: bannerURL},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("set banner for event %s: %w", id, err)
	}
	return nil
}

// Delete permanently removes the event and its registrant set.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// AddRegistrant atomically adds uid to the registrant set. ArrayUnion
// keeps set semantics under concurrent callers; a plain read-modify-
// write would lose concurrent registrations.
func (r *Repository) AddRegistrant(ctx context.Context, id, uid string) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "registrations", Value: firestore.ArrayUnion(uid)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("register %s for event %s: %w", uid, id, err)
	}
	return nil
}

// RemoveRegistrant atomically removes uid from the registrant set; a
// uid that is not a member is a no-op.
func (r *Repository) RemoveRegistrant(ctx context.Context, id, uid string) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "registrations", Value: firestore.ArrayRemove(uid)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("unregister %s from event %s: %w", uid, id, err)
	}
	return nil
}

// ListPublished returns published events ordered by date descending;
// this query shape is ordered server-side.
func (r *Repository) ListPublished(ctx context.Context) ([]models.Event, error) {
	q := r.client.Collection(collection).
		Where("status", "==", string(models.EventPublished)).
		OrderBy("date", firestore.Desc)
	return r.list(ctx, q.Documents(ctx))
}

// ListByCreator returns all events created by uid, in store order; the
// consumer applies its own ordering.
func (r *Repository) ListByCreator(ctx context.Context, uid string) ([]models.Event, error) {
	q := r.client.Collection(collection).Where("createdBy", "==", uid)
	return r.list(ctx, q.Documents(ctx))
}

// ListAll returns every event regardless of status.
func (r *Repository) ListAll(ctx context.Context) ([]models.Event, error) {
	return r.list(ctx, r.client.Collection(collection).Documents(ctx))
}

// ListRegisteredFor returns the events whose registrant set contains uid.
func (r *Repository) ListRegisteredFor(ctx context.Context, uid string) ([]models.Event, error) {
	q := r.client.Collection(collection).Where("registrations", "array-contains", uid)
	return r.list(ctx, q.Documents(ctx))
}

func (r *Repository) list(ctx context.Context, iter *firestore.DocumentIterator) ([]models.Event, error) {
	defer iter.Stop()
	var list []models.Event
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		ev, err := decode(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, *ev)
	}
	return list, nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.Event, error) {
	var ev models.Event
	if err := snap.DataTo(&ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", snap.Ref.ID, err)
	}
	ev.ID = snap.Ref.ID
	return &ev, nil
}
