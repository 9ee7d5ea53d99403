// cmd/api/context.go
// Helpers for moving the authenticated identity in and out of a request's
// context. The identity is always passed this way; no package-level state.
package main

import (
	"context"
	"net/http"

	"github.com/aoideee/bookshelf-api/internal/auth"
)

// contextKey is a private type for request context keys, so no other package
// can collide with our entries.
type contextKey string

// identityContextKey is the key under which the authenticated identity is stored.
const identityContextKey = contextKey("identity")

// contextSetIdentity returns a copy of the request with the identity stored
// in its context.
func (app *applicationDependencies) contextSetIdentity(r *http.Request, identity auth.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityContextKey, identity)
	return r.WithContext(ctx)
}

// contextGetIdentity retrieves the identity from the request context.
// The second return value is false for anonymous requests.
func (app *applicationDependencies) contextGetIdentity(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(identityContextKey).(auth.Identity)
	return identity, ok
}
