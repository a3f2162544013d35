package jwt

import (
	"context"
	"net/http"
	"strings"

	"trailmeet/internal/pkg/logx"
)

type contextKey string

const (
	// ContextAuthPayloadKey is the context key of the parsed *Payload.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// SessionChecker reports whether a session identifier is still live.
type SessionChecker interface {
	Active(ctx context.Context, sessionID string) (bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate parses tokenString and confirms its session is still registered.
// A nil sessions checker skips the registry lookup.
func Authenticate(ctx context.Context, tokenString, secretKey string, sessions SessionChecker) (*Payload, error) {
	payload, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}

	if sessions != nil {
		active, err := sessions.Active(ctx, payload.SessionID())
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrSessionRevoked
		}
	}

	return payload, nil
}

// IdentityExtractorMiddleware injects the Payload of a valid bearer token into the
// request context. Missing, invalid, expired or revoked tokens leave the request
// anonymous; handlers decide whether that is acceptable.
func IdentityExtractorMiddleware(secretKey string, sessions SessionChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := Authenticate(r.Context(), tokenString, secretKey, sessions)
			if err != nil {
				logx.Warn("Invalid, expired or revoked session token, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext returns the authenticated Payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}

// WithPayload returns a copy of ctx carrying payload.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}
