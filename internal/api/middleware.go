// Package api implements the draftdeck REST API using chi.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/models"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user stored by AuthMiddleware.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey{}).(*models.User)
	return u
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on EventSource or WebSocket requests, so a "token" query
// parameter is accepted when the header is absent.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

// AuthMiddleware requires a valid bearer token and stores its user in the
// request context.
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeJSON(w, http.StatusUnauthorized, errorBody("Not authenticated"))
				return
			}
			u, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				switch {
				case errors.Is(err, auth.ErrUserNotFound):
					writeJSON(w, http.StatusUnauthorized, errorBody("User not found"))
				case errors.Is(err, apperr.ErrUnauthorized):
					writeJSON(w, http.StatusUnauthorized, errorBody("Could not validate credentials"))
				default:
					slog.Error("authenticate failed", slog.String("error", err.Error()))
					writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
