// Package http provides the REST handlers for the item collection.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/itemgate/internal/middleware"
	"github.com/atinyakov/itemgate/internal/models"
)

// maxBodyBytes caps the size of a POST or PUT body.
const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// ItemService defines the item operations required by the handlers.
type ItemService interface {
	// Create decodes body and stores it under a new identifier.
	Create(ctx context.Context, body []byte) (models.Record, error)
	// List returns every stored item keyed by identifier.
	List(ctx context.Context) (map[int64]models.Item, error)
	// Get returns the item stored under id.
	Get(ctx context.Context, id int64) (models.Item, error)
	// Replace overwrites the item stored under id with body.
	Replace(ctx context.Context, id int64, body []byte) (models.Record, error)
	// Delete removes the item stored under id.
	Delete(ctx context.Context, id int64) error
}

// ItemHandler serves the /items resource.
type ItemHandler struct {
	// ItemService performs the underlying item operations.
	ItemService ItemService
	// Logger receives internal errors. A nil Logger discards them.
	Logger *zap.Logger
}

// List handles GET /items and returns the whole collection as an object
// keyed by identifier.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ItemService.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /items. The body must be a non-empty JSON object.
// It responds 201 with the stored {id, item} pair.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.ItemService.Create(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Get handles GET /items/{id} and responds with {"<id>": item}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.ItemService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[int64]models.Item{id: item})
}

// Replace handles PUT /items/{id}. The stored value is overwritten, not
// merged.
func (h *ItemHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rec, err := h.ItemService.Replace(r.Context(), id, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /items/{id}.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.ItemService.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// fail maps err onto a status code and writes the {"error": ...} body.
func (h *ItemHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, models.ErrNotFound.Error())
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge.Error())
	case errors.Is(err, models.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, models.ErrInvalidPayload.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
	default:
		if h.Logger != nil {
			h.Logger.Error("item request failed",
				zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
				zap.Error(err),
			)
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// itemID parses the {id} URL parameter. Anything that is not a base-10
// integer names no item and is reported as not found.
func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, models.ErrNotFound
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			return nil, errBodyTooLarge
		}
		return nil, models.ErrInvalidPayload
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RejectUnauthenticated renders the REST response for requests refused by
// the authentication middleware.
func RejectUnauthenticated(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
}
