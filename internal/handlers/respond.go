package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

const (
	internalErrorMessage = "internal server error"
	notFoundMessage      = "Data not found"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("WARN: failed to encode response: %v", err)
	}
}

// logInternal records the real cause of a 500; clients only ever see
// internalErrorMessage.
func logInternal(r *http.Request, op string, err error) {
	log.Printf("ERROR [%s] %s %s: %s: %v", chimw.GetReqID(r.Context()), r.Method, r.URL.Path, op, err)
}

// journalErrorBody shapes the {status, message, error} envelope of the journal
// endpoints. Fields carries per-field validation messages when there are any.
type journalErrorBody struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeJournalError is the single error mapping point for the journal
// endpoints: validation → 422, not found → 404, anything else → 500.
func writeJournalError(w http.ResponseWriter, r *http.Request, op string, err error, validationMessage string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, journalErrorBody{
			Status:  http.StatusUnprocessableEntity,
			Message: validationMessage,
			Error:   verr.Error(),
			Errors:  verr.Fields,
		})
	case errors.Is(err, services.ErrNotFound):
		writeJournalNotFound(w)
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	default:
		logInternal(r, op, err)
		writeJSON(w, http.StatusInternalServerError, journalErrorBody{
			Status:  http.StatusInternalServerError,
			Message: "Something went wrong",
			Error:   internalErrorMessage,
		})
	}
}

func writeJournalNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, journalErrorBody{
		Status:  http.StatusNotFound,
		Message: "error",
		Error:   notFoundMessage,
	})
}

// writeAuthError maps login/register/logout failures. Validation and
// credential failures are 422 under validationKey; the rest are 500.
func writeAuthError(w http.ResponseWriter, r *http.Request, op string, err error, validationKey string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		if validationKey == "error" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": verr.Error()})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{validationKey: verr.Fields})
	case errors.Is(err, services.ErrEmailNotFound), errors.Is(err, services.ErrWrongPassword):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
	default:
		logInternal(r, op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
	}
}
