// internal/app/features/shared/shared.go
package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// WriteJSON sends v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a single JSON object into v. Malformed bodies and
// unknown fields are reported as streaksync.ErrInvalidInput.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", streaksync.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %v", streaksync.ErrInvalidInput, err)
	}
	return nil
}

// User converts the request identity into the user the synchronizer
// acts for.
func User(r *http.Request) (streaksync.User, bool) {
	id, ok := auth.CurrentIdentity(r)
	if !ok || id.UserID == "" {
		return streaksync.User{}, false
	}
	return streaksync.User{
		ID:       id.UserID,
		Name:     id.Name,
		Email:    id.Email,
		PhotoURL: id.PhotoURL,
	}, true
}
