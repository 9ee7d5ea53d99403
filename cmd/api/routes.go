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
// Reads on the books collection are public. Every mutating endpoint and the
// profile endpoint are wrapped in requireAuthenticatedUser, so a request
// without a valid token is rejected before any store logic runs.
//
// Current endpoints:
//
//	POST   /v1/users                  – register a new user
//	POST   /v1/tokens/authentication  – exchange credentials for a token
//	GET    /v1/books                  – list books (paginated, aggregate-enriched)
//	GET    /v1/books/:id              – book detail with average rating and reviews
//	POST   /v1/books                  – create a new book
//	PATCH  /v1/books/:id              – partially update a book (owner only)
//	DELETE /v1/books/:id              – delete a book and its reviews (owner only)
//	POST   /v1/reviews                – create a review (one per user per book)
//	PATCH  /v1/reviews/:id            – partially update a review (author only)
//	DELETE /v1/reviews/:id            – delete a review (author only)
//	GET    /v1/profile                – the caller's aggregated profile
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	// Registration and login
	router.HandlerFunc(http.MethodPost, "/v1/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", app.createAuthenticationTokenHandler)

	// Book routes
	router.HandlerFunc(http.MethodGet, "/v1/books", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/books/:id", app.showBookHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", app.requireAuthenticatedUser(app.createBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:id", app.requireAuthenticatedUser(app.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:id", app.requireAuthenticatedUser(app.deleteBookHandler))

	// Review routes
	router.HandlerFunc(http.MethodPost, "/v1/reviews", app.requireAuthenticatedUser(app.createReviewHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/reviews/:id", app.requireAuthenticatedUser(app.updateReviewHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/reviews/:id", app.requireAuthenticatedUser(app.deleteReviewHandler))

	// Profile route
	router.HandlerFunc(http.MethodGet, "/v1/profile", app.requireAuthenticatedUser(app.showProfileHandler))

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from the other middlewares and the router alike.
	return app.recoverPanic(app.rateLimit(app.authenticate(router)))
}
