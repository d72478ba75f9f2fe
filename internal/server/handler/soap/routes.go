package soap

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/itemgate/internal/middleware"
)

// Realm is the Basic-auth realm announced by the SOAP listener.
const Realm = "soap"

// Path is where the SOAP endpoint is mounted.
const Path = "/soap"

// NewRouter constructs the HTTP handler for the SOAP listener. All routes,
// including the WSDL, require Basic authentication; refusals are returned as
// SOAP Client faults with status 401.
//
//	POST /soap       → handler.Serve
//	GET  /soap?wsdl  → handler.Describe
func NewRouter(handler *Handler, verifier middleware.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.BasicAuth(verifier, Realm, RejectUnauthenticated))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFault(w, http.StatusNotFound, &Fault{Code: FaultClient, String: "no service at this path"})
	})

	r.Post(Path, handler.Serve)
	r.Get(Path, handler.Describe)

	return r
}
