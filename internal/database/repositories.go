package database

import (
	"database/sql"

	"github.com/AnshRaj112/moodjournal-backend/internal/database/memory"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

type Repositories struct {
	Users    services.UserStore
	Tokens   services.TokenStore
	Moods    services.MoodStore
	Journals services.JournalStore
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Tokens:   NewTokenRepository(db),
		Moods:    NewMoodRepository(db),
		Journals: NewJournalRepository(db),
	}
}

// NewMemoryRepositories backs every store with one in-process memory.Store.
func NewMemoryRepositories() *Repositories {
	store := memory.New()
	return &Repositories{
		Users:    store.Users(),
		Tokens:   store.Tokens(),
		Moods:    store.Moods(),
		Journals: store.Journals(),
	}
}
