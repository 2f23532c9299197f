package handlers

import (
	"net/http"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
)

type moodListResponse struct {
	Status int           `json:"status"`
	Data   []models.Mood `json:"data"`
}

// Moods lists the mood reference table so clients can offer valid mood_id values.
func (h *Handler) Moods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.moods.List(r.Context())
	if err != nil {
		writeJournalError(w, r, "moods", err, "error")
		return
	}
	writeJSON(w, http.StatusOK, moodListResponse{Status: http.StatusOK, Data: moods})
}
