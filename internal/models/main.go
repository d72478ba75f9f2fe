// Package models defines the core data structures for identities and items,
// together with the error taxonomy shared by both listeners.
package models

import "errors"

var (
	// ErrUnauthenticated is returned for missing, malformed or rejected
	// credentials. Callers must not distinguish the cause.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrInvalidPayload is returned when a request body is empty or is not
	// a JSON object.
	ErrInvalidPayload = errors.New("invalid JSON data")
	// ErrNotFound is returned when the referenced item does not exist.
	ErrNotFound = errors.New("item not found")
)

// Identity is the verified username of the caller.
type Identity string

// Item is an opaque JSON object stored by the repository.
type Item map[string]any

// Record pairs a stored item with its identifier.
type Record struct {
	// ID is the system-assigned identifier of the item.
	ID int64 `json:"id"`
	// Item is the stored value.
	Item Item `json:"item"`
}

// Clone returns a deep copy of the item. Nested objects and arrays are
// copied so the result shares no mutable state with i.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Item(t).Clone())
	case Item:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
