// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the recoverPanic, rateLimit, and authenticate middlewares.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → authenticate → router
//
// authenticate resolves the actor for every request (anonymous when no
// credential is presented); per-route gates then decide 401 vs 403. Catalog
// reads are public; catalog writes require a staff actor.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	// User account routes. Registration is open to anonymous clients; the
	// remaining operations are gated per the authorization policy.
	router.HandlerFunc(http.MethodPost, "/v1/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users", app.requireAuthenticated(app.listUsersHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id", app.requireAuthenticated(app.showUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/:id", app.requireAuthenticated(app.updateUserHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/users/:id", app.requireAuthenticated(app.deleteUserHandler))

	// Token lifecycle routes. All three accept anonymous requests; the
	// credential being exchanged travels in the body, not the header.
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/token-verify", app.verifyTokenHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/token-refresh", app.refreshTokenHandler)

	// Book CRUD routes
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", app.requireCatalogWrite(app.createBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.requireCatalogWrite(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.requireCatalogWrite(app.deleteBookHandler))

	// Author CRUD routes
	router.HandlerFunc(http.MethodGet, "/v1/authors", app.listAuthorsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id", app.showAuthorHandler)
	router.HandlerFunc(http.MethodPost, "/v1/authors", app.requireCatalogWrite(app.createAuthorHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/authors/:id", app.requireCatalogWrite(app.updateAuthorHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/authors/:id", app.requireCatalogWrite(app.deleteAuthorHandler))

	// Publisher CRUD routes
	router.HandlerFunc(http.MethodGet, "/v1/publishers", app.listPublishersHandler)
	router.HandlerFunc(http.MethodGet, "/v1/publishers/:id", app.showPublisherHandler)
	router.HandlerFunc(http.MethodPost, "/v1/publishers", app.requireCatalogWrite(app.createPublisherHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/publishers/:id", app.requireCatalogWrite(app.updatePublisherHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/publishers/:id", app.requireCatalogWrite(app.deletePublisherHandler))

	// Tag CRUD routes
	router.HandlerFunc(http.MethodGet, "/v1/tags", app.listTagsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/tags/:id", app.showTagHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tags", app.requireCatalogWrite(app.createTagHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/tags/:id", app.requireCatalogWrite(app.updateTagHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/tags/:id", app.requireCatalogWrite(app.deleteTagHandler))

	// Book type CRUD routes
	router.HandlerFunc(http.MethodGet, "/v1/book-types", app.listBookTypesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/book-types/:id", app.showBookTypeHandler)
	router.HandlerFunc(http.MethodPost, "/v1/book-types", app.requireCatalogWrite(app.createBookTypeHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/book-types/:id", app.requireCatalogWrite(app.updateBookTypeHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/book-types/:id", app.requireCatalogWrite(app.deleteBookTypeHandler))

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from rateLimit, authenticate, and router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
