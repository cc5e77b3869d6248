package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/elimu-hub/backend/internal/auth/service"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

// extractToken pulls the access token from the Authorization header or cookie
func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// If not in header, try cookie
	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// AuthMiddleware validates JWT access token and extracts userID and role
func AuthMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)

			// If no token found, return 401
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			// Validate token and extract userID and role
			userID, role, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or expired token"}`))
				return
			}

			// Add userID and role to context
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, userRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware extracts identity from a token when one is present
// Requests without a token (or with an invalid one) proceed anonymously
func OptionalAuthMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				if userID, role, err := tokenGenerator.ValidateAccessToken(token); err == nil {
					ctx := context.WithValue(r.Context(), userIDKey, userID)
					ctx = context.WithValue(ctx, userRoleKey, role)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// GetUserRole retrieves the user role from context
func GetUserRole(ctx context.Context) (int, bool) {
	role, ok := ctx.Value(userRoleKey).(int)
	return role, ok
}
