package users

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// Identity is what the identity provider asserts about a caller: a
// stable UID, the email, and optional display claims.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// TokenVerifier validates a provider-issued ID token and extracts the
// caller's identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// FirebaseVerifier verifies Firebase Auth ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a verifier backed by the Firebase Auth client.
func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates the ID token and maps its claims to an Identity.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("verify id token: %w", err)
	}
	return Identity{
		UID:         token.UID,
		Email:       claimString(token.Claims, "email"),
		DisplayName: claimString(token.Claims, "name"),
		PhotoURL:    claimString(token.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
