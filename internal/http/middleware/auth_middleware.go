package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/http/response"
	"github.com/lionwox/blogging-platform-api/internal/observability"
	"github.com/lionwox/blogging-platform-api/internal/repository"
	"github.com/lionwox/blogging-platform-api/internal/security"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalLoader resolves a user id from a validated token to the stored
// user entity.
type PrincipalLoader interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
}

// Authenticator validates the bearer access token and resolves the
// principal. Missing header, bad token, expired token, and deleted user
// all yield the same 401 so callers cannot tell which check rejected
// them. A storage failure is the one exception: that is a 500.
func Authenticator(jwtMgr *security.JWTManager, users PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "could not validate credentials", nil)
				return
			}
			raw := strings.TrimSpace(auth[7:])
			claims, err := jwtMgr.Parse(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "could not validate credentials", nil)
				return
			}
			principal, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// A signed, unexpired token for a user that no longer
					// exists is still unauthenticated.
					observability.RecordAccessTokenValidation(r.Context(), "principal_not_found")
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "could not validate credentials", nil)
					return
				}
				observability.RecordAccessTokenValidation(r.Context(), "error")
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(principalContextKey).(*domain.User)
	return u, ok
}
