package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/AnshRaj112/moodjournal-backend/internal/middleware"
	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

const noDataMessage = "no data available"

type journalListResponse struct {
	Status  int              `json:"status"`
	Data    []JournalSummary `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

type journalResponse struct {
	Status int         `json:"status"`
	Data   interface{} `json:"data"`
}

type journalMessageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Index lists the caller's journals, newest first.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJournalError(w, r, "index", services.ErrUnauthenticated, "error")
		return
	}

	journals, err := h.journals.List(r.Context(), user.ID)
	if err != nil {
		writeJournalError(w, r, "index", err, "error")
		return
	}
	if len(journals) == 0 {
		writeJSON(w, http.StatusOK, journalListResponse{Status: http.StatusOK, Message: noDataMessage})
		return
	}

	p, err := h.newProjector(r.Context(), user)
	if err != nil {
		writeJournalError(w, r, "index", err, "error")
		return
	}
	data, err := p.summaries(journals)
	if err != nil {
		writeJournalError(w, r, "index", err, "error")
		return
	}
	writeJSON(w, http.StatusOK, journalListResponse{Status: http.StatusOK, Data: data})
}

// Show returns one of the caller's journals in detail.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJournalError(w, r, "show", services.ErrUnauthenticated, "error")
		return
	}
	id, ok := journalID(r)
	if !ok {
		writeJournalNotFound(w)
		return
	}

	journal, err := h.journals.Get(r.Context(), user.ID, id)
	if err != nil {
		writeJournalError(w, r, "show", err, "error")
		return
	}

	p, err := h.newProjector(r.Context(), user)
	if err != nil {
		writeJournalError(w, r, "show", err, "error")
		return
	}
	data, err := p.detail(journal)
	if err != nil {
		writeJournalError(w, r, "show", err, "error")
		return
	}
	writeJSON(w, http.StatusOK, journalResponse{Status: http.StatusOK, Data: data})
}

// Store creates a journal from a multipart form with an image. A user_id
// field is accepted for compatibility and ignored: the owner is always the caller.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJournalError(w, r, "store", services.ErrUnauthenticated, "validation error")
		return
	}

	fields, err := readFields(w, r, maxUploadBody)
	if err != nil {
		if tooLarge(err) {
			err = services.ImageTooLargeError()
		}
		writeJournalError(w, r, "store", err, "validation error")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	journal, err := h.journals.Create(r.Context(), user.ID, services.CreateJournalInput{
		Title:       fields["title"],
		Description: fields["description"],
		MoodID:      fields["mood_id"],
		Image:       uploadedImage(r),
	})
	if err != nil {
		writeJournalError(w, r, "store", err, "validation error")
		return
	}

	h.writeSummary(w, r, "store", user, journal)
}

// Update applies any subset of title, description and mood_id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJournalError(w, r, "update", services.ErrUnauthenticated, "error")
		return
	}
	id, ok := journalID(r)
	if !ok {
		writeJournalNotFound(w)
		return
	}

	fields, err := readFields(w, r, maxFieldsBody)
	if err != nil {
		if tooLarge(err) {
			err = bodyTooLargeError()
		}
		writeJournalError(w, r, "update", err, "error")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	journal, err := h.journals.Update(r.Context(), user.ID, id, services.UpdateJournalInput{
		Title:       optional(fields, "title"),
		Description: optional(fields, "description"),
		MoodID:      optional(fields, "mood_id"),
	})
	if err != nil {
		writeJournalError(w, r, "update", err, "error")
		return
	}

	h.writeSummary(w, r, "update", user, journal)
}

// Delete removes one of the caller's journals.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJournalError(w, r, "delete", services.ErrUnauthenticated, "error")
		return
	}
	id, ok := journalID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, journalMessageResponse{Status: http.StatusNotFound, Message: notFoundMessage})
		return
	}

	// TODO: garbage-collect image blobs no journal references any more; names
	// are content digests, so a blob can be shared by several journals.
	if err := h.journals.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, journalMessageResponse{Status: http.StatusNotFound, Message: notFoundMessage})
			return
		}
		writeJournalError(w, r, "delete", err, "error")
		return
	}

	writeJSON(w, http.StatusOK, journalMessageResponse{
		Status:  http.StatusOK,
		Message: "Data has been successfully deleted",
	})
}

func (h *Handler) writeSummary(w http.ResponseWriter, r *http.Request, op string, user models.User, journal models.Journal) {
	p, err := h.newProjector(r.Context(), user)
	if err != nil {
		writeJournalError(w, r, op, err, "error")
		return
	}
	data, err := p.summary(journal)
	if err != nil {
		writeJournalError(w, r, op, err, "error")
		return
	}
	writeJSON(w, http.StatusOK, journalResponse{Status: http.StatusOK, Data: data})
}

// uploadedImage returns the "image" part of a parsed multipart form, or nil
// when the request carried none.
func uploadedImage(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
