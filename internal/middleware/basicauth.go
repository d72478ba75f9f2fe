// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atinyakov/itemgate/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Verifier checks a username/secret pair and returns the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, username, secret string) (models.Identity, error)
}

// RejectFunc writes the protocol-specific response for a request that failed
// authentication. The WWW-Authenticate header is already set.
type RejectFunc func(w http.ResponseWriter, r *http.Request)

// BasicAuth returns a middleware enforcing HTTP Basic authentication.
//
// Requests without a well-formed Authorization header are rejected without
// calling the verifier. Requests whose credentials the verifier refuses are
// rejected the same way, so the caller cannot tell an unknown user from a
// wrong secret. On success the identity is stored in the request context
// and can be read with IdentityFromContext.
func BasicAuth(v Verifier, realm string, reject RejectFunc) func(http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, secret, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				reject(w, r)
				return
			}
			id, err := v.Verify(r.Context(), username, secret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", challenge)
				reject(w, r)
				return
			}
			recordIdentity(r.Context(), id)
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from ctx.
// Returns an empty identity if none is bound.
func IdentityFromContext(ctx context.Context) models.Identity {
	if id, ok := ctx.Value(identityKey).(models.Identity); ok {
		return id
	}
	return ""
}

// WithIdentity binds id to ctx the same way BasicAuth does. It is meant for
// tests exercising handlers without the middleware.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
