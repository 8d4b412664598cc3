package users

import (
	"context"
	"fmt"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

// Service authenticates a request end to end: verify the provider's ID
// token, then resolve the stored profile for the asserted identity.
type Service struct {
	verifier TokenVerifier
	resolver *Resolver
}

// NewService creates the authentication service.
func NewService(verifier TokenVerifier, resolver *Resolver) *Service {
	return &Service{verifier: verifier, resolver: resolver}
}

// Authenticate verifies idToken and returns the resolved profile.
// Verification failures wrap models.ErrInvalidToken; anything else is a
// profile load failure.
func (s *Service) Authenticate(ctx context.Context, idToken string) (*models.UserProfile, error) {
	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	return s.resolver.Resolve(ctx, id)
}
