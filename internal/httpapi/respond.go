package httpapi

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"riding-school-api/internal/booking"
)

const contentTypeJSON = "application/json; charset=utf-8"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// fail maps service errors onto HTTP statuses. Unexpected failures carry
// their cause in the body.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *booking.ValidationError
		cerr *booking.ConflictError
		nerr *booking.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &cerr):
		writeError(w, http.StatusConflict, cerr.Msg)
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, nerr.Msg)
	default:
		a.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error: "+err.Error())
	}
}
