package http

import (
	"net/http"

	"github.com/atinyakov/itemgate/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Realm is the Basic-auth realm announced by the REST listener.
const Realm = "items"

// NewRouter constructs and returns the HTTP handler for the REST listener.
//
// Routes:
//
//	GET    /items       → itemHandler.List
//	POST   /items       → itemHandler.Create
//	GET    /items/{id}  → itemHandler.Get
//	PUT    /items/{id}  → itemHandler.Replace
//	DELETE /items/{id}  → itemHandler.Delete
//
// The same routes are also mounted under /api/item.
//
// Middleware chain (applied in order):
//  1. Recoverer: turns handler panics into 500s
//  2. WithRequestLogging(logger): logs incoming requests
//  3. BasicAuth(verifier): rejects unauthenticated calls with 401
func NewRouter(
	itemHandler *ItemHandler,
	verifier middleware.Verifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	// Every route, including unknown ones, sits behind the gate.
	r.Use(middleware.BasicAuth(verifier, Realm, RejectUnauthenticated))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	items := func(r chi.Router) {
		r.Get("/", itemHandler.List)
		r.Post("/", itemHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", itemHandler.Get)
			r.Put("/", itemHandler.Replace)
			r.Delete("/", itemHandler.Delete)
		})
	}
	r.Route("/items", items)
	r.Route("/api/item", items)

	return r
}
