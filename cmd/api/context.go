// cmd/api/context.go
// Request-scoped actor plumbing. The authenticate middleware stores the
// resolved user in the request context and handlers read it back out, so the
// actor is always threaded explicitly rather than held in a global.
package main

import (
	"context"
	"net/http"

	"github.com/sijanonly/school-library/internal/data"
)

// contextKey is a private type so our context entries can never collide with
// keys set by other packages.
type contextKey string

// userContextKey is the key under which the resolved actor is stored.
const userContextKey = contextKey("user")

// contextSetUser returns a copy of the request with user stored in its context.
func (app *applicationDependencies) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser retrieves the actor from the request context. It is only
// called on requests that passed through the authenticate middleware, so a
// missing value is a programming error and panics.
func (app *applicationDependencies) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
