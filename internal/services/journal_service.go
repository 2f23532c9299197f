package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
)

const moodInvalidMessage = "The selected mood id is invalid."

// CreateJournalInput is the raw create form. MoodID stays a string so a
// non-integer value is reported as a validation error instead of a decode error.
type CreateJournalInput struct {
	Title       string
	Description string
	MoodID      string
	Image       *multipart.FileHeader
}

// UpdateJournalInput holds the supplied subset of fields; nil means absent.
type UpdateJournalInput struct {
	Title       *string
	Description *string
	MoodID      *string
}

// JournalService owns the journal rules: required fields, mood existence,
// image constraints and owner scoping.
type JournalService struct {
	journals JournalStore
	moods    *MoodService
	images   *ImageService
}

func NewJournalService(journals JournalStore, moods *MoodService, images *ImageService) *JournalService {
	return &JournalService{journals: journals, moods: moods, images: images}
}

// List returns the user's journals, newest first. No journals is an empty slice.
func (s *JournalService) List(ctx context.Context, userID int64) ([]models.Journal, error) {
	journals, err := s.journals.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	return journals, nil
}

// Get returns ErrNotFound for a missing or foreign journal.
func (s *JournalService) Get(ctx context.Context, userID, id int64) (models.Journal, error) {
	return s.journals.FindForUser(ctx, userID, id)
}

func (s *JournalService) Create(ctx context.Context, userID int64, in CreateJournalInput) (models.Journal, error) {
	verr := NewValidationError()
	requireString(verr, "title", in.Title)
	requireField(verr, "description", in.Description)
	moodID, err := s.checkMood(ctx, verr, in.MoodID)
	if err != nil {
		return models.Journal{}, err
	}
	if in.Image == nil {
		verr.Add("image", imageRequiredMessage)
	}
	if err := verr.OrNil(); err != nil {
		return models.Journal{}, err
	}

	// the image goes last so a rejected form never leaves a blob behind
	image, err := s.images.Store(ctx, in.Image)
	if err != nil {
		return models.Journal{}, err
	}

	journal := models.Journal{
		UserID:      userID,
		MoodID:      moodID,
		Title:       in.Title,
		Description: in.Description,
		Image:       image.Ref,
	}
	if err := s.journals.Create(ctx, &journal); err != nil {
		if derr := s.images.Discard(context.WithoutCancel(ctx), image); derr != nil {
			log.Printf("WARN: %v", derr)
		}
		return models.Journal{}, fmt.Errorf("create journal: %w", err)
	}
	return journal, nil
}

// Update applies the supplied fields only. With nothing supplied the journal
// is returned untouched, still subject to the ownership check.
func (s *JournalService) Update(ctx context.Context, userID, id int64, in UpdateJournalInput) (models.Journal, error) {
	verr := NewValidationError()
	var patch models.JournalPatch

	if in.Title != nil {
		requireString(verr, "title", *in.Title)
		patch.Title = in.Title
	}
	if in.Description != nil {
		requireField(verr, "description", *in.Description)
		patch.Description = in.Description
	}
	if in.MoodID != nil {
		moodID, err := s.checkMood(ctx, verr, *in.MoodID)
		if err != nil {
			return models.Journal{}, err
		}
		patch.MoodID = &moodID
	}
	if err := verr.OrNil(); err != nil {
		return models.Journal{}, err
	}

	if patch.Empty() {
		return s.journals.FindForUser(ctx, userID, id)
	}
	return s.journals.UpdateForUser(ctx, userID, id, patch)
}

// Delete removes the journal permanently; ErrNotFound for missing or foreign ids.
func (s *JournalService) Delete(ctx context.Context, userID, id int64) error {
	return s.journals.DeleteForUser(ctx, userID, id)
}

// checkMood parses and verifies a mood id, recording problems on verr. The
// returned error is reserved for lookup failures.
func (s *JournalService) checkMood(ctx context.Context, verr *ValidationError, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add("mood_id", "The mood id field is required.")
		return 0, nil
	}
	moodID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		verr.Add("mood_id", "The mood id field must be an integer.")
		return 0, nil
	}
	exists, err := s.moods.Exists(ctx, moodID)
	if err != nil {
		return 0, fmt.Errorf("check mood: %w", err)
	}
	if !exists {
		verr.Add("mood_id", moodInvalidMessage)
	}
	return moodID, nil
}
