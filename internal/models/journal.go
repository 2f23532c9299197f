package models

import (
	"time"
)

// Journal represents a private journaling entry for a user
type Journal struct {
	ID          int64     `bson:"_id" json:"id"`
	UserID      int64     `bson:"user_id" json:"user_id"`
	MoodID      int64     `bson:"mood_id" json:"mood_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// JournalPatch carries the fields of a partial update. Nil means "leave as is".
type JournalPatch struct {
	Title       *string
	Description *string
	MoodID      *int64
}

// Empty reports whether the patch changes nothing.
func (p JournalPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.MoodID == nil
}
