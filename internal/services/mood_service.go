package services

import (
	"context"
	"fmt"
	"log"

	"github.com/AnshRaj112/moodjournal-backend/internal/models"
)

var moodsCacheKey = CacheKey("moods", "all")

// MoodService serves the mood reference table, cached in Redis when a cache
// is configured.
type MoodService struct {
	store MoodStore
	cache *CacheService
}

func NewMoodService(store MoodStore, cache *CacheService) *MoodService {
	return &MoodService{store: store, cache: cache}
}

// List returns all moods ordered by id.
func (s *MoodService) List(ctx context.Context) ([]models.Mood, error) {
	var moods []models.Mood
	hit, err := s.cache.Get(ctx, moodsCacheKey, &moods)
	if err != nil {
		log.Printf("WARN: discarding unreadable mood cache entry: %v", err)
	}
	if hit {
		return moods, nil
	}

	moods, err = s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	if err := s.cache.Set(ctx, moodsCacheKey, moods); err != nil {
		log.Printf("WARN: failed to cache moods: %v", err)
	}
	return moods, nil
}

// Categories maps mood id to its category label.
func (s *MoodService) Categories(ctx context.Context) (map[int64]string, error) {
	moods, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	categories := make(map[int64]string, len(moods))
	for _, m := range moods {
		categories[m.ID] = m.Category
	}
	return categories, nil
}

// Exists reports whether id names a mood. A miss drops the cached list and
// asks the store again, so moods seeded after the cache was filled are seen.
func (s *MoodService) Exists(ctx context.Context, id int64) (bool, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := categories[id]; ok || s.cache == nil {
		return ok, nil
	}

	if err := s.cache.Delete(ctx, moodsCacheKey); err != nil {
		log.Printf("WARN: failed to drop mood cache: %v", err)
	}
	categories, err = s.Categories(ctx)
	if err != nil {
		return false, err
	}
	_, ok := categories[id]
	return ok, nil
}
