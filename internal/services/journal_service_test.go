package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

func strPtr(s string) *string { return &s }

func createJournal(t *testing.T, f *fixture, userID int64, title string) models.Journal {
	t.Helper()
	journal, err := f.journals.Create(context.Background(), userID, services.CreateJournalInput{
		Title:       title,
		Description: "body of " + title,
		MoodID:      "1",
		Image:       uploadHeader(t, "photo.png", pngBytes),
	})
	if err != nil {
		t.Fatalf("create journal: %v", err)
	}
	return journal
}

func TestCreateJournalStoresImage(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)

	journal := createJournal(t, f, user.ID, "first")
	if journal.ID == 0 || journal.UserID != user.ID || journal.MoodID != 1 {
		t.Fatalf("unexpected journal %+v", journal)
	}
	if !strings.HasPrefix(journal.Image, "posts/") || !strings.HasSuffix(journal.Image, ".png") {
		t.Fatalf("unexpected image reference %q", journal.Image)
	}
	if _, err := os.Stat(filepath.Join(f.images.Root(), filepath.FromSlash(journal.Image))); err != nil {
		t.Fatalf("image not written: %v", err)
	}
}

func TestCreateJournalValidation(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	ctx := context.Background()

	_, err := f.journals.Create(ctx, user.ID, services.CreateJournalInput{MoodID: "abc"})
	fields := validationFields(t, err)
	for _, name := range []string{"title", "description", "mood_id", "image"} {
		if len(fields[name]) == 0 {
			t.Errorf("expected error on %s, got %v", name, fields)
		}
	}

	_, err = f.journals.Create(ctx, user.ID, services.CreateJournalInput{
		Title: "t", Description: "d", MoodID: "999",
		Image: uploadHeader(t, "photo.png", pngBytes),
	})
	fields = validationFields(t, err)
	if got := fields["mood_id"]; len(got) != 1 || got[0] != "The selected mood id is invalid." {
		t.Fatalf("expected invalid mood error, got %v", got)
	}

	entries, _ := os.ReadDir(filepath.Join(f.images.Root(), services.PostsFolder))
	if len(entries) != 0 {
		t.Fatalf("rejected forms must not store images, found %d files", len(entries))
	}
}

func TestUpdateJournalPartial(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	ctx := context.Background()
	journal := createJournal(t, f, user.ID, "draft")

	updated, err := f.journals.Update(ctx, user.ID, journal.ID, services.UpdateJournalInput{Title: strPtr("final")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "final" || updated.Description != journal.Description || updated.MoodID != journal.MoodID {
		t.Fatalf("only the title should change: %+v", updated)
	}
	if updated.Image != journal.Image {
		t.Fatal("update must not touch the image")
	}

	unchanged, err := f.journals.Update(ctx, user.ID, journal.ID, services.UpdateJournalInput{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if unchanged.Title != "final" {
		t.Fatalf("empty update changed the journal: %+v", unchanged)
	}

	_, err = f.journals.Update(ctx, user.ID, journal.ID, services.UpdateJournalInput{Title: strPtr(" "), MoodID: strPtr("42")})
	fields := validationFields(t, err)
	if len(fields["title"]) == 0 || len(fields["mood_id"]) == 0 {
		t.Fatalf("expected title and mood_id errors, got %v", fields)
	}
}

func TestJournalOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := registerUser(t, f)
	intruder := models.User{Name: "eve", Email: "eve@example.com", PasswordHash: "x"}
	if err := f.store.Users().Create(ctx, &intruder); err != nil {
		t.Fatalf("create intruder: %v", err)
	}
	journal := createJournal(t, f, owner.ID, "private")

	if _, err := f.journals.Get(ctx, intruder.ID, journal.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := f.journals.Update(ctx, intruder.ID, journal.ID, services.UpdateJournalInput{Title: strPtr("x")}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if _, err := f.journals.Update(ctx, intruder.ID, journal.ID, services.UpdateJournalInput{}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("empty update: expected ErrNotFound, got %v", err)
	}
	if err := f.journals.Delete(ctx, intruder.ID, journal.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}

	list, err := f.journals.List(ctx, intruder.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("intruder should see no journals, got %d", len(list))
	}

	if err := f.journals.Delete(ctx, owner.ID, journal.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := f.journals.Get(ctx, owner.ID, journal.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("deleted journal still readable: %v", err)
	}
}

// brokenJournals fails every insert and delegates everything else.
type brokenJournals struct {
	services.JournalStore
}

func (brokenJournals) Create(ctx context.Context, journal *models.Journal) error {
	return errors.New("db down")
}

func storedBlobs(t *testing.T, f *fixture) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.images.Root(), services.PostsFolder))
	if err != nil {
		t.Fatalf("read posts dir: %v", err)
	}
	return len(entries)
}

func TestCreateJournalRemovesImageWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	journals := services.NewJournalService(brokenJournals{f.store.Journals()}, f.moods, services.NewImageService(f.images))

	_, err := journals.Create(context.Background(), user.ID, services.CreateJournalInput{
		Title: "t", Description: "d", MoodID: "1",
		Image: uploadHeader(t, "photo.png", pngBytes),
	})
	if err == nil {
		t.Fatal("expected the insert failure to surface")
	}
	if n := storedBlobs(t, f); n != 0 {
		t.Fatalf("failed create left %d blobs behind", n)
	}
}

func TestCreateJournalKeepsSharedImageWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	existing := createJournal(t, f, user.ID, "kept")
	journals := services.NewJournalService(brokenJournals{f.store.Journals()}, f.moods, services.NewImageService(f.images))

	_, err := journals.Create(context.Background(), user.ID, services.CreateJournalInput{
		Title: "t", Description: "d", MoodID: "1",
		Image: uploadHeader(t, "same.png", pngBytes),
	})
	if err == nil {
		t.Fatal("expected the insert failure to surface")
	}
	if _, err := os.Stat(filepath.Join(f.images.Root(), filepath.FromSlash(existing.Image))); err != nil {
		t.Fatalf("image of an existing journal was removed: %v", err)
	}
}

func TestUpdateJournalRefreshesUpdatedAt(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return created })
	journal := createJournal(t, f, user.ID, "morning")

	edited := created.Add(90 * time.Minute)
	f.store.SetClock(func() time.Time { return edited })
	updated, err := f.journals.Update(ctx, user.ID, journal.ID, services.UpdateJournalInput{Description: strPtr("evening")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.UpdatedAt.Equal(edited) || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at not refreshed: created %v updated %v", updated.CreatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("created_at moved to %v", updated.CreatedAt)
	}
}

func TestJournalTitleLengthLimit(t *testing.T) {
	f := newFixture(t)
	user := registerUser(t, f)
	ctx := context.Background()

	_, err := f.journals.Create(ctx, user.ID, services.CreateJournalInput{
		Title: strings.Repeat("a", 256), Description: "d", MoodID: "1",
		Image: uploadHeader(t, "photo.png", pngBytes),
	})
	fields := validationFields(t, err)
	if got := fields["title"]; len(got) != 1 || got[0] != "The title field must not be greater than 255 characters." {
		t.Fatalf("expected length error, got %v", fields)
	}
	if n := storedBlobs(t, f); n != 0 {
		t.Fatalf("rejected form stored %d blobs", n)
	}

	// the limit counts characters, not bytes
	journal := createJournal(t, f, user.ID, strings.Repeat("é", 255))
	_, err = f.journals.Update(ctx, user.ID, journal.ID, services.UpdateJournalInput{Title: strPtr(strings.Repeat("é", 256))})
	if fields := validationFields(t, err); len(fields["title"]) != 1 {
		t.Fatalf("expected length error on update, got %v", fields)
	}
}
