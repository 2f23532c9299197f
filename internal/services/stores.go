package services

import (
	"context"
	"io"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/google/uuid"
)

// UserStore persists registered users. Lookups return ErrNotFound when no row
// matches; Create returns ErrDuplicate when the email is taken.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	// CreateWithToken writes the user and its first token as one unit: on any
	// error neither is stored. token.UserID is set from the new user.
	CreateWithToken(ctx context.Context, user *models.User, token *models.AccessToken) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// TokenStore persists hashed access tokens.
type TokenStore interface {
	Create(ctx context.Context, token *models.AccessToken) error
	FindByID(ctx context.Context, id uuid.UUID) (models.AccessToken, error)
	Touch(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MoodStore reads the mood reference table.
type MoodStore interface {
	List(ctx context.Context) ([]models.Mood, error)
}

// JournalStore is scoped by owner on every call: a journal owned by someone
// else behaves exactly like a missing one (ErrNotFound).
type JournalStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Journal, error)
	FindForUser(ctx context.Context, userID, id int64) (models.Journal, error)
	Create(ctx context.Context, journal *models.Journal) error
	UpdateForUser(ctx context.Context, userID, id int64, patch models.JournalPatch) (models.Journal, error)
	DeleteForUser(ctx context.Context, userID, id int64) error
}

// ImageStore keeps uploaded image bytes under name and hands back the
// reference stored on the journal row. Names are content digests, so putting
// the same name twice must be harmless; created is false when the blob was
// already there.
type ImageStore interface {
	Put(ctx context.Context, name string, body io.Reader) (ref string, created bool, err error)
	// Delete removes the blob behind ref. A missing blob is not an error.
	Delete(ctx context.Context, ref string) error
}
