package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rachitshah07/drone-survey-management-system/internal/mission"
)

// ErrorResponse is the standardized error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeCoordinatorError maps lifecycle errors onto HTTP statuses. Conflicts
// are 409s the caller may retry; validation problems are 400s; everything
// unexpected is a 500 with a generic message.
func writeCoordinatorError(w http.ResponseWriter, err error) {
	var verr *mission.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, mission.ErrMissionNotFound), errors.Is(err, mission.ErrDroneNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, mission.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, mission.ErrDroneUnavailable):
		writeError(w, http.StatusConflict, "drone not available")
	case errors.Is(err, mission.ErrConflict):
		writeError(w, http.StatusConflict, "transition conflict, retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
