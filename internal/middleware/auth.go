package middleware

import (
	"context"
	"net/http"
	"strings"

	"mandi-backend/internal/auth"
	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type contextKey string

const ScopeKey contextKey = "scope"
const RoleKey contextKey = "role"

// Roles carried in the token's role claim
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and puts the company, year and
// user scope it carries on the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.Error(w, http.StatusUnauthorized, "Authorization header required", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(w, http.StatusUnauthorized, "Invalid authorization format", "")
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "Invalid or expired token", "")
			return
		}

		ctx := WithScope(r.Context(), claims.Scope())
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithScope stores scope on ctx
func WithScope(ctx context.Context, scope models.Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// ScopeFromContext extracts the request scope
func ScopeFromContext(ctx context.Context) (models.Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(models.Scope)
	return scope, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// RequireRole rejects authenticated requests whose role is not allowed.
// It must run after Authenticate.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := GetRoleFromContext(r.Context())
			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.Error(w, http.StatusForbidden, "Insufficient permissions", "")
		})
	}
}
