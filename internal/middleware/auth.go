package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adeldevs/campus-flare-85986/internal/models"
	"github.com/adeldevs/campus-flare-85986/pkg/response"
)

// ContextProfile is the gin context key for the resolved user profile.
const ContextProfile = "user_profile"

// Authenticator verifies a provider-issued ID token and resolves the
// caller's stored profile. Resolution may itself write (profile
// creation, pinned-role reconciliation), so it can fail on store errors
// even for a valid token.
type Authenticator interface {
	Authenticate(ctx context.Context, idToken string) (*models.UserProfile, error)
}

// Auth returns a middleware that requires a valid bearer token and sets
// the resolved profile in the context.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or invalid authorization header")
			c.Abort()
			return
		}
		profile, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortAuthFailure(c, err)
			return
		}
		c.Set(ContextProfile, profile)
		c.Next()
	}
}

// OptionalAuth resolves a profile when a bearer token is present but
// lets anonymous requests through; a token that is present yet invalid
// is still rejected.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		profile, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortAuthFailure(c, err)
			return
		}
		c.Set(ContextProfile, profile)
		c.Next()
	}
}

// ProfileFrom returns the resolved profile set by Auth, if any.
func ProfileFrom(c *gin.Context) (*models.UserProfile, bool) {
	v, ok := c.Get(ContextProfile)
	if !ok {
		return nil, false
	}
	profile, ok := v.(*models.UserProfile)
	return profile, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// A profile-store failure is a load failure, not an invalid credential.
func abortAuthFailure(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidToken) {
		response.Unauthorized(c, "invalid or expired token")
	} else {
		response.ServiceUnavailable(c, "failed to load user profile")
	}
	c.Abort()
}
