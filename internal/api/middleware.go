package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/models"
	"github.com/virshi/ai-visibility/internal/store"
)

// TokenValidator re-validates an opaque session token against the hosted
// auth endpoint.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*store.AuthUser, error)
}

type contextKey int

const profileKey contextKey = iota

// profileFrom returns the authenticated profile stored by the middleware.
func profileFrom(r *http.Request) *models.Profile {
	p, _ := r.Context().Value(profileKey).(*models.Profile)
	return p
}

// authenticate checks the bearer token on every request. Tokens are opaque
// and re-validated remotely each time; there is no local session state.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			logrus.Debugf("Token validation failed: %v", err)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		profile, err := s.store.ProfileByID(r.Context(), user.ID)
		if err != nil {
			// A valid token whose profile row is missing still gets a
			// default-role identity.
			logrus.Warnf("Profile lookup failed for user %s: %v", user.ID, err)
			profile = &models.Profile{ID: user.ID, Email: user.Email, Role: "user"}
		}

		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates moderation routes.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := profileFrom(r)
		if profile == nil || !isAdmin(profile.Role) {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAdmin(role string) bool {
	return role == "admin" || role == "super_admin"
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
