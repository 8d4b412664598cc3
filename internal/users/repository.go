package users

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

const collection = "users"

// Store is the profile persistence surface the resolver and handlers need.
type Store interface {
	Get(ctx context.Context, uid string) (*models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	SetRole(ctx context.Context, uid string, role models.Role) error
	SetDisplayName(ctx context.Context, uid, displayName string) error
	SetPhotoURL(ctx context.Context, uid, photoURL string) error
}

// Repository is the Firestore-backed profile store accessor. Profile
// documents are keyed by the identity UID, one document per identity.
type Repository struct {
	client *firestore.Client
}

// NewRepository creates a profile repository.
func NewRepository(client *firestore.Client) *Repository {
	return &Repository{client: client}
}

// Get returns the profile for uid, or models.ErrProfileNotFound.
func (r *Repository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	snap, err := r.client.Collection(collection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", uid, err)
	}
	var profile models.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	return &profile, nil
}

// Create writes a new profile document; timestamps are server-assigned.
func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	if _, err := r.client.Collection(collection).Doc(profile.UID).Set(ctx, profile); err != nil {
		return fmt.Errorf("create profile %s: %w", profile.UID, err)
	}
	return nil
}

// SetRole rewrites only the role field.
func (r *Repository) SetRole(ctx context.Context, uid string, role models.Role) error {
	_, err := r.client.Collection(collection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "role", Value: string(role)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrProfileNotFound
		}
		return fmt.Errorf("set role for %s: %w", uid, err)
	}
	return nil
}

// SetDisplayName updates the caller-editable display name.
func (r *Repository) SetDisplayName(ctx context.Context, uid, displayName string) error {
	_, err := r.client.Collection(collection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: displayName},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("set display name for %s: %w", uid, err)
	}
	return nil
}

// SetPhotoURL updates the avatar reference.
func (r *Repository) SetPhotoURL(ctx context.Context, uid, photoURL string) error {
	_, err := r.client.Collection(collection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "photoURL", Value: photoURL},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("set photo url for %s: %w", uid, err)
	}
	return nil
}
