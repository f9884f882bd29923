package middleware

import (
	"context"
	"net/http"

	"quickhacker/internal/common"
	"quickhacker/internal/common/security"
	"quickhacker/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserCtxKey contextKey = "user"

// UserResolver loads the account a verified token refers to.
type UserResolver interface {
	CurrentUser(ctx context.Context, id string) (*model.User, error)
}

// TokenFromCookie finds a token in the named cookie.
func TokenFromCookie(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// ResolveUser attaches the token's user to the request context. Requests without a
// valid token, or whose user no longer exists, continue unauthenticated.
func ResolveUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claimMap, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims := security.ClaimsFromMap(claimMap)
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := resolver.CurrentUser(r.Context(), claims.ID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), UserCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok && user != nil
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireRole(message string, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !allowed[user.Role] {
				common.RespondWithError(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets through authenticated users holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return requireRole("Forbidden: Insufficient permissions", roles...)
}

func RequireAdmin(next http.Handler) http.Handler {
	return requireRole("Forbidden: Admin access required", model.RoleAdmin)(next)
}
