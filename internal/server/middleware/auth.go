// Package middleware provides the HTTP cross-cutting layers: machine and
// end-user authentication, request logging, and CORS.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/volspike/volspike/internal/domain"
)

// MachineAuth returns middleware that validates the shared secret a trusted
// upstream poller presents, either as X-API-Key or as a Bearer token. If
// secret is empty, the wrapped routes reject every request: ingestion without
// a configured key is disabled, not open.
func MachineAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeAuthError(w, http.StatusUnauthorized, "ingestion disabled: no API key configured")
				return
			}

			token := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing authentication token")
				return
			}

			// Constant-time comparison to prevent timing attacks.
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeAuthError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserAuth returns middleware that validates an end-user bearer token against
// the verifier and requires at least the given tier.
func UserAuth(verifier domain.TokenVerifier, minTier domain.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			tier, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					writeAuthError(w, http.StatusUnauthorized, "invalid bearer token")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "token verification failed")
				return
			}

			if tier < minTier {
				writeAuthError(w, http.StatusForbidden, "insufficient tier")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken looks for a secret in the X-API-Key header or the
// Authorization header (Bearer scheme).
func extractToken(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	return extractBearer(r)
}

// extractBearer returns the token of an Authorization: Bearer header.
func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// writeAuthError sends an error response with a JSON body.
func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
