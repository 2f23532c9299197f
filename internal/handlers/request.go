package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

const (
	// maxFieldsBody bounds bodies that carry no file
	maxFieldsBody = 1 << 20
	// maxUploadBody leaves room for the form fields around one image
	maxUploadBody = services.MaxImageBytes + maxFieldsBody
	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk
	multipartMemory = 8 << 20
)

// readFields reads a JSON object, a urlencoded form or a multipart form into
// field → value, reading at most limit bytes. Fields the client did not send
// are absent from the map. JSON numbers and booleans keep their literal text;
// null reads as "". An oversized body fails with *http.MaxBytesError, any
// other unreadable body with a *services.ValidationError.
func readFields(w http.ResponseWriter, r *http.Request, limit int64) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var err error
	switch mediaType {
	case "application/json":
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, bodyError(err)
		}
		fields := make(map[string]string, len(raw))
		for key, value := range raw {
			fields[key] = jsonScalar(value)
		}
		return fields, nil
	case "multipart/form-data":
		err = r.ParseMultipartForm(multipartMemory)
	default:
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError(err)
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}

func jsonScalar(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(value))
	if text == "null" {
		return ""
	}
	return text
}

// optional returns a pointer to fields[key], or nil when the key was not sent.
func optional(fields map[string]string, key string) *string {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	return &value
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	verr := services.NewValidationError()
	verr.Add("body", "The request body could not be read.")
	return verr
}

// tooLarge reports whether err came from exceeding the body limit.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func bodyTooLargeError() error {
	verr := services.NewValidationError()
	verr.Add("body", "The request body is too large.")
	return verr
}

// journalID parses the {id} route parameter. Anything that is not a positive
// integer cannot name a journal.
func journalID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
