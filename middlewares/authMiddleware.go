package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to the current, active user.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*models.User, error)
}

// Authentication rejects requests without a valid "Bearer <token>" header
// and stores the principal in the request context.
func Authentication(auth Authenticator, detail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientToken := r.Header.Get("Authorization")
			if clientToken == "" {
				helper.Fail(w, apperrors.Unauthorized("Not authorized, no token"), detail)
				return
			}

			tokenParts := strings.Fields(clientToken)
			if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
				helper.Fail(w, apperrors.Unauthorized("Invalid Authorization format"), detail)
				return
			}

			user, err := auth.Authenticate(r.Context(), tokenParts[1])
			if err != nil {
				helper.Fail(w, err, detail)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireOwner lets owners and admins through; staff get 403.
func RequireOwner(detail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				helper.Fail(w, apperrors.Unauthorized("Not authorized"), detail)
				return
			}
			if user.Role != models.RoleOwner && user.Role != models.RoleAdmin {
				helper.Fail(w, apperrors.Forbidden("Only the restaurant owner can do this"), detail)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated principal, or nil on public routes.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
