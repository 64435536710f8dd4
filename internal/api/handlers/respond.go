package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/api/dto"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err by kind. Causes of internal errors are never exposed.
func writeError(w http.ResponseWriter, err error) {
	typed := apperr.As(err)
	if typed == nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, apperr.HTTPStatus(typed.Kind()), dto.ErrorResponse{
		Error:   typed.Message(),
		Details: typed.Details(),
	})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.SuccessResponse{Message: msg})
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid " + name).WithDetails(map[string]string{name: "must be a valid UUID"})
	}
	return id, nil
}

// uuidParams parses several URL parameters, stopping at the first invalid one.
func uuidParams(r *http.Request, names ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, err := uuidParam(r, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
