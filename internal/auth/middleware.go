package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for the authenticated caller's claims
	ClaimsKey contextKey = "claims"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ClaimsFromContext extracts the verified claims from the request context
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// sendUnauthorized sends a 401 with the Bearer challenge header
func sendUnauthorized(w http.ResponseWriter, message, code string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	response := ErrorResponse{
		Error: message,
		Code:  code,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// validateTokenFormat performs basic token format validation before the
// verifier is consulted.
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token cannot be empty")
	}
	if len(tokenString) > 8192 { // 8KB limit
		return errors.New("token size exceeds maximum allowed")
	}
	return nil
}

// RequireAuth validates the bearer token with the configured verifier and
// sets the caller's claims on the request context. Verification failures of
// any kind reject the request with 401.
func RequireAuth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				sendUnauthorized(w, "Authorization header required", "MISSING_AUTH_HEADER")
				return
			}

			// Check Bearer token format
			if !strings.HasPrefix(authHeader, "Bearer ") {
				sendUnauthorized(w, "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if err := validateTokenFormat(tokenString); err != nil {
				sendUnauthorized(w, "Invalid token format: "+err.Error(), "INVALID_TOKEN_FORMAT")
				return
			}

			// Verify against the identity provider
			claims, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				code := "INVALID_TOKEN"
				if strings.Contains(err.Error(), "expired") {
					code = "TOKEN_EXPIRED"
				}
				sendUnauthorized(w, "Invalid authentication credentials: "+err.Error(), code)
				return
			}
			if claims.UID == "" {
				sendUnauthorized(w, "Token has no caller identity", "INVALID_TOKEN")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
