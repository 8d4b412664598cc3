package requests

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

const collection = "adminRequests"

// Store is the admin-request persistence surface.
type Store interface {
	Create(ctx context.Context, req *models.AdminRequest) (string, error)
	Get(ctx context.Context, id string) (*models.AdminRequest, error)
	GetByUser(ctx context.Context, uid string) (*models.AdminRequest, error)
	List(ctx context.Context) ([]models.AdminRequest, error)
	SetReviewed(ctx context.Context, id string, s models.RequestStatus, reviewerUID string, at time.Time) error
}

// Repository is the Firestore-backed admin-request store.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates an admin-request repository.
func NewRepository(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Create adds a new request document and returns its ID.
func (r *Repository) Create(ctx context.Context, req *models.AdminRequest) (string, error) {
	ref, _, err := r.client.Collection(collection).Add(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create admin request: %w", err)
	}
	return ref.ID, nil
}

// Get returns the request by ID, or models.ErrRequestNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*models.AdminRequest, error) {
	snap, err := r.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get admin request %s: %w", id, err)
	}
	return decode(snap)
}

// GetByUser returns the caller's request regardless of status, or
// models.ErrRequestNotFound when the user never applied. One request
// per user is the expected shape; with no transactional guard a
// concurrent duplicate is possible, so the first match wins.
func (r *Repository) GetByUser(ctx context.Context, uid string) (*models.AdminRequest, error) {
	iter := r.client.Collection(collection).Where("userId", "==", uid).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, models.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin request for %s: %w", uid, err)
	}
	return decode(snap)
}

// List returns every request, newest first.
func (r *Repository) List(ctx context.Context) ([]models.AdminRequest, error) {
	iter := r.client.Collection(collection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()
	var list []models.AdminRequest
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list admin requests: %w", err)
		}
		req, err := decode(snap)
		if err != nil {
			return nil, err
		}
		list = append(list, *req)
	}
	return list, nil
}

// SetReviewed finalizes a request with the reviewer's verdict.
func (r *Repository) SetReviewed(ctx context.Context, id string, s models.RequestStatus, reviewerUID string, at time.Time) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
		{Path: "reviewedBy", Value: reviewerUID},
		{Path: "reviewedAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrRequestNotFound
		}
		return fmt.Errorf("review admin request %s: %w", id, err)
	}
	return nil
}

func decode(snap *firestore.DocumentSnapshot) (*models.AdminRequest, error) {
	var req models.AdminRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("decode admin request %s: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}
