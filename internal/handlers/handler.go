package handlers

import (
	"net/http"

	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

// Handler serves the HTTP API on top of the services layer.
type Handler struct {
	auth     *services.AuthService
	sessions *services.SessionService
	journals *services.JournalService
	moods    *services.MoodService
}

func New(auth *services.AuthService, sessions *services.SessionService, journals *services.JournalService, moods *services.MoodService) *Handler {
	return &Handler{auth: auth, sessions: sessions, journals: journals, moods: moods}
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
