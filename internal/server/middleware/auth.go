// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/jonathan/jobboard/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	userKey      ContextKey = "user"
	principalKey ContextKey = "principal"
)

// TokenValidator is an interface for validating bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (Principal, error)
}

// Principal is what a verified token asserts about its holder.
type Principal interface {
	GetUserKey() types.UserKey
	GetTokenID() string
}

// UserResolver finds the user a token names.
type UserResolver interface {
	Lookup(key types.UserKey) (*types.User, bool)
}

// AuthMiddleware creates middleware that validates bearer tokens, resolves the
// user they name and adds both to the request context.
func AuthMiddleware(tokens TokenValidator, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := tokens.ValidateToken(r.Context(), tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// A valid token for an account that no longer exists is still refused.
			user, found := users.Lookup(principal.GetUserKey())
			if !found {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, principal)))
		})
	}
}

// RequireRole only lets through users holding one of roles. Anyone else is
// refused with 403 and pointed at their own dashboard. It must run after
// AuthMiddleware.
func RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := GetUser(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, user.Role()) {
				forbidden(w, user.Role())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forbidden(w http.ResponseWriter, role types.Role) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":    fmt.Sprintf("%s accounts cannot access this resource", role),
		"redirect": role.DashboardPath(),
	})
}

// bearerToken extracts the token from a case-insensitive "Bearer" Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], parts[1] != ""
}

// WithUser returns a copy of ctx carrying the authenticated user and token.
func WithUser(ctx context.Context, user *types.User, principal Principal) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, principalKey, principal)
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*types.User, error) {
	user, ok := r.Context().Value(userKey).(*types.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in request context")
	}
	return user, nil
}

// GetPrincipal extracts the verified token from the request context.
func GetPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}
