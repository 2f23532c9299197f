package services_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/AnshRaj112/moodjournal-backend/internal/database/memory"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	gifBytes  = append([]byte("GIF89a"), bytes.Repeat([]byte{1}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{2}, 32)...)
	svgBytes  = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`)
)

// uploadHeader builds a real multipart.FileHeader the way net/http would.
func uploadHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(16 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

type fixture struct {
	store    *memory.Store
	images   *services.LocalImageStore
	sessions *services.SessionService
	auth     *services.AuthService
	moods    *services.MoodService
	journals *services.JournalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	images, err := services.NewLocalImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("local image store: %v", err)
	}
	sessions := services.NewSessionService(store.Tokens(), store.Users())
	moods := services.NewMoodService(store.Moods(), nil)
	return &fixture{
		store:    store,
		images:   images,
		sessions: sessions,
		auth:     services.NewAuthService(store.Users(), sessions),
		moods:    moods,
		journals: services.NewJournalService(store.Journals(), moods, services.NewImageService(images)),
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	return verr.Fields
}
