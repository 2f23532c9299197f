// Package memory holds mutex-guarded in-process stores. They back
// STORE_DRIVER=memory for local development and the handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
	"github.com/google/uuid"
)

// DefaultMoods mirrors the rows seeded by the Postgres migrations.
var DefaultMoods = []models.Mood{
	{ID: 1, Category: "happy"},
	{ID: 2, Category: "sad"},
	{ID: 3, Category: "angry"},
	{ID: 4, Category: "anxious"},
	{ID: 5, Category: "calm"},
	{ID: 6, Category: "excited"},
	{ID: 7, Category: "tired"},
	{ID: 8, Category: "grateful"},
}

// Store implements every services store interface over plain maps.
type Store struct {
	mu sync.RWMutex

	users       map[int64]models.User
	tokens      map[uuid.UUID]models.AccessToken
	moods       map[int64]models.Mood
	journals    map[int64]models.Journal
	nextUserID  int64
	nextJournal int64

	now func() time.Time
}

func New() *Store {
	s := &Store{
		users:    make(map[int64]models.User),
		tokens:   make(map[uuid.UUID]models.AccessToken),
		moods:    make(map[int64]models.Mood),
		journals: make(map[int64]models.Journal),
		now:      time.Now,
	}
	for _, m := range DefaultMoods {
		s.moods[m.ID] = m
	}
	return s
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Users, Tokens, Moods and Journals expose the store under each interface.
func (s *Store) Users() services.UserStore       { return userStore{s} }
func (s *Store) Tokens() services.TokenStore     { return tokenStore{s} }
func (s *Store) Moods() services.MoodStore       { return moodStore{s} }
func (s *Store) Journals() services.JournalStore { return journalStore{s} }

// AddMood inserts or replaces a mood row.
func (s *Store) AddMood(m models.Mood) {
	s.mu.Lock()
	s.moods[m.ID] = m
	s.mu.Unlock()
}

// DeleteMood removes a mood row without touching journals that reference it.
func (s *Store) DeleteMood(id int64) {
	s.mu.Lock()
	delete(s.moods, id)
	s.mu.Unlock()
}

// TokenCount returns the number of live tokens.
func (s *Store) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

type userStore struct{ s *Store }

func (u userStore) Create(ctx context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email) {
		return services.ErrDuplicate
	}
	s.insertUser(user)
	return nil
}

func (u userStore) CreateWithToken(ctx context.Context, user *models.User, token *models.AccessToken) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	// check both before writing either
	if s.emailTaken(user.Email) {
		return services.ErrDuplicate
	}
	if _, ok := s.tokens[token.ID]; ok {
		return services.ErrDuplicate
	}
	s.insertUser(user)
	token.UserID = user.ID
	token.CreatedAt = user.CreatedAt
	s.tokens[token.ID] = *token
	return nil
}

// emailTaken and insertUser expect s.mu to be held.
func (s *Store) emailTaken(email string) bool {
	for _, existing := range s.users {
		if existing.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) insertUser(user *models.User) {
	s.nextUserID++
	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
}

func (u userStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, services.ErrNotFound
}

func (u userStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, services.ErrNotFound
	}
	return user, nil
}

type tokenStore struct{ s *Store }

func (t tokenStore) Create(ctx context.Context, token *models.AccessToken) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.ID]; ok {
		return services.ErrDuplicate
	}
	token.CreatedAt = s.now()
	s.tokens[token.ID] = *token
	return nil
}

func (t tokenStore) FindByID(ctx context.Context, id uuid.UUID) (models.AccessToken, error) {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[id]
	if !ok {
		return models.AccessToken{}, services.ErrNotFound
	}
	return token, nil
}

func (t tokenStore) Touch(ctx context.Context, id uuid.UUID) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[id]
	if !ok {
		return services.ErrNotFound
	}
	now := s.now()
	token.LastUsedAt = &now
	s.tokens[id] = token
	return nil
}

func (t tokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.tokens, id)
	return nil
}

type moodStore struct{ s *Store }

func (m moodStore) List(ctx context.Context) ([]models.Mood, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	moods := make([]models.Mood, 0, len(s.moods))
	for _, mood := range s.moods {
		moods = append(moods, mood)
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i].ID < moods[j].ID })
	return moods, nil
}

type journalStore struct{ s *Store }

func (j journalStore) ListByUser(ctx context.Context, userID int64) ([]models.Journal, error) {
	s := j.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	journals := []models.Journal{}
	for _, journal := range s.journals {
		if journal.UserID == userID {
			journals = append(journals, journal)
		}
	}
	sort.Slice(journals, func(a, b int) bool {
		if !journals[a].CreatedAt.Equal(journals[b].CreatedAt) {
			return journals[a].CreatedAt.After(journals[b].CreatedAt)
		}
		return journals[a].ID > journals[b].ID
	})
	return journals, nil
}

func (j journalStore) FindForUser(ctx context.Context, userID, id int64) (models.Journal, error) {
	s := j.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	journal, ok := s.journals[id]
	if !ok || journal.UserID != userID {
		return models.Journal{}, services.ErrNotFound
	}
	return journal, nil
}

func (j journalStore) Create(ctx context.Context, journal *models.Journal) error {
	s := j.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[journal.UserID]; !ok {
		return services.ErrNotFound
	}
	if _, ok := s.moods[journal.MoodID]; !ok {
		return services.ErrNotFound
	}
	s.nextJournal++
	now := s.now()
	journal.ID = s.nextJournal
	journal.CreatedAt = now
	journal.UpdatedAt = now
	s.journals[journal.ID] = *journal
	return nil
}

func (j journalStore) UpdateForUser(ctx context.Context, userID, id int64, patch models.JournalPatch) (models.Journal, error) {
	s := j.s
	s.mu.Lock()
	defer s.mu.Unlock()
	journal, ok := s.journals[id]
	if !ok || journal.UserID != userID {
		return models.Journal{}, services.ErrNotFound
	}
	if patch.Title != nil {
		journal.Title = *patch.Title
	}
	if patch.Description != nil {
		journal.Description = *patch.Description
	}
	if patch.MoodID != nil {
		journal.MoodID = *patch.MoodID
	}
	journal.UpdatedAt = s.now()
	s.journals[id] = journal
	return journal, nil
}

func (j journalStore) DeleteForUser(ctx context.Context, userID, id int64) error {
	s := j.s
	s.mu.Lock()
	defer s.mu.Unlock()
	journal, ok := s.journals[id]
	if !ok || journal.UserID != userID {
		return services.ErrNotFound
	}
	delete(s.journals, id)
	return nil
}
