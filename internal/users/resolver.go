package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

// Resolver maps an authenticated identity to its stored profile,
// creating one on first sign-in. A fixed set of email addresses is
// pinned to the ultimateAdmin role: on every resolve, a pinned identity
// whose stored role drifted is rewritten back. This is a standing
// reconciliation rule, so even a logical read may perform a write.
type Resolver struct {
	store  Store
	pinned map[string]bool
	logger *zap.Logger
}

// NewResolver creates a resolver; pinnedEmails are matched case-insensitively.
func NewResolver(store Store, pinnedEmails []string, logger *zap.Logger) *Resolver {
	pinned := make(map[string]bool, len(pinnedEmails))
	for _, e := range pinnedEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			pinned[e] = true
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, pinned: pinned, logger: logger}
}

// Resolve returns the profile for the identity, creating or
// reconciling it as needed. On any store failure the profile is not
// resolved and the error is reported to the caller; there is no retry.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (*models.UserProfile, error) {
	profile, err := r.store.Get(ctx, id.UID)
	if errors.Is(err, models.ErrProfileNotFound) {
		return r.create(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if role := r.roleFor(id.Email, profile.Role); role != profile.Role {
		if err := r.store.SetRole(ctx, id.UID, role); err != nil {
			return nil, fmt.Errorf("reconcile role: %w", err)
		}
		r.logger.Info("pinned admin role reconciled",
			zap.String("uid", id.UID), zap.String("from", string(profile.Role)))
		profile.Role = role
	}
	return profile, nil
}

func (r *Resolver) create(ctx context.Context, id Identity) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Role:        r.roleFor(id.Email, models.RoleUser),
	}
	if err := r.store.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	r.logger.Info("profile created", zap.String("uid", id.UID), zap.String("role", string(profile.Role)))
	return profile, nil
}

// roleFor returns the effective role for an identity: pinned emails are
// always ultimateAdmin, everyone else keeps the stored role.
func (r *Resolver) roleFor(email string, stored models.Role) models.Role {
	if r.pinned[strings.ToLower(email)] {
		return models.RoleUltimateAdmin
	}
	return stored
}
