package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeldevs/campus-flare-85986/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	profile *models.UserProfile
	err     error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ string) (*models.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/ping", mw, func(c *gin.Context) {
		profile, ok := ProfileFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"uid": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": profile.UID})
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	r := authRouter(Auth(&stubAuthenticator{profile: &models.UserProfile{UID: "u1"}}))

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "token-without-scheme").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic dXNlcjpwYXNz").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer ").Code)
}

func TestAuthSetsProfileOnValidToken(t *testing.T) {
	r := authRouter(Auth(&stubAuthenticator{profile: &models.UserProfile{UID: "u1"}}))
	w := get(r, "Bearer sometoken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"u1"`)
}

func TestAuthDistinguishesBadTokenFromStoreFailure(t *testing.T) {
	bad := authRouter(Auth(&stubAuthenticator{err: fmt.Errorf("%w: expired", models.ErrInvalidToken)}))
	assert.Equal(t, http.StatusUnauthorized, get(bad, "Bearer expired").Code)

	down := authRouter(Auth(&stubAuthenticator{err: fmt.Errorf("firestore unavailable")}))
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "Bearer sometoken").Code)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	r := authRouter(OptionalAuth(&stubAuthenticator{profile: &models.UserProfile{UID: "u1"}}))

	w := get(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":""`)

	w = get(r, "Bearer sometoken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"u1"`)
}

func TestOptionalAuthStillRejectsBadToken(t *testing.T) {
	r := authRouter(OptionalAuth(&stubAuthenticator{err: fmt.Errorf("%w: forged", models.ErrInvalidToken)}))
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer forged").Code)
}
