package soap

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/itemgate/internal/middleware"
)

// maxEnvelopeBytes caps the size of a request envelope.
const maxEnvelopeBytes = 1 << 20

// operation runs one SOAP procedure and returns the body element of the
// response.
type operation func(ctx context.Context, call Call) (any, error)

// Handler dispatches SOAP calls to their operations.
type Handler struct {
	ops    map[string]operation
	logger *zap.Logger
}

// NewHandler returns a Handler exposing say_hello backed by g.
func NewHandler(g Greeter, logger *zap.Logger) *Handler {
	return &Handler{
		ops: map[string]operation{
			"say_hello": sayHello(g),
		},
		logger: logger,
	}
}

// Serve handles POST /soap.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	call, err := DecodeCall(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes))
	if err != nil {
		writeFault(w, http.StatusInternalServerError, &Fault{Code: FaultClient, String: err.Error()})
		return
	}
	op, ok := h.ops[call.Operation]
	if !ok {
		writeFault(w, http.StatusInternalServerError, &Fault{
			Code:   FaultClient,
			String: "unknown operation: " + call.Operation,
		})
		return
	}

	out, err := op(r.Context(), call)
	if err != nil {
		var fault *Fault
		if errors.As(err, &fault) {
			writeFault(w, http.StatusInternalServerError, fault)
			return
		}
		h.logger.Error("soap operation failed",
			zap.String("operation", call.Operation),
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeFault(w, http.StatusInternalServerError, &Fault{Code: FaultServer, String: "internal error"})
		return
	}

	h.logger.Debug("soap call",
		zap.String("operation", call.Operation),
		zap.String("user", string(middleware.IdentityFromContext(r.Context()))),
	)
	writeEnvelope(w, http.StatusOK, out)
}

// Describe handles GET /soap?wsdl.
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.URL.Query()["wsdl"]; !ok {
		w.Header().Set("Allow", "POST")
		writeFault(w, http.StatusMethodNotAllowed, &Fault{
			Code:   FaultClient,
			String: "use POST for calls or GET ?wsdl for the contract",
		})
		return
	}
	var buf bytes.Buffer
	if err := WriteWSDL(&buf, endpointURL(r)); err != nil {
		h.logger.Error("render wsdl", zap.Error(err))
		writeFault(w, http.StatusInternalServerError, &Fault{Code: FaultServer, String: "internal error"})
		return
	}
	w.Header().Set("Content-Type", ContentType)
	_, _ = w.Write(buf.Bytes())
}

// RejectUnauthenticated renders the SOAP fault for requests refused by the
// authentication middleware.
func RejectUnauthenticated(w http.ResponseWriter, _ *http.Request) {
	writeFault(w, http.StatusUnauthorized, &Fault{Code: FaultClient, String: "unauthorized"})
}

func writeFault(w http.ResponseWriter, status int, f *Fault) {
	writeEnvelope(w, status, f)
}

func writeEnvelope(w http.ResponseWriter, status int, content any) {
	var buf bytes.Buffer
	if err := EncodeEnvelope(&buf, content); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func endpointURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}
