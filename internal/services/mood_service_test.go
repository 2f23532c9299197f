package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/moodjournal-backend/internal/database/memory"
	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestMoodServiceCachesList(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := memory.New()
	moods := services.NewMoodService(store.Moods(), services.NewCacheService(client))

	list, err := moods.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(memory.DefaultMoods) {
		t.Fatalf("expected %d moods, got %d", len(memory.DefaultMoods), len(list))
	}
	if !mr.Exists(services.CacheKeyPrefix + "moods:all") {
		t.Fatal("mood list was not cached")
	}
	if ttl := mr.TTL(services.CacheKeyPrefix + "moods:all"); ttl != services.DefaultCacheTTL {
		t.Fatalf("expected ttl %s, got %s", services.DefaultCacheTTL, ttl)
	}

	// served from cache: a mood removed from the store is still listed
	store.DeleteMood(1)
	categories, err := moods.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if categories[1] != "happy" {
		t.Fatalf("expected cached category, got %q", categories[1])
	}
}

func TestMoodExistsRefreshesStaleCache(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	store := memory.New()
	moods := services.NewMoodService(store.Moods(), services.NewCacheService(client))

	if _, err := moods.List(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	store.AddMood(models.Mood{ID: 42, Category: "nostalgic"})

	ok, err := moods.Exists(ctx, 42)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("mood added after caching should be found")
	}

	ok, err = moods.Exists(ctx, 4242)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("unknown mood reported as existing")
	}
}

func TestMoodServiceWithoutCache(t *testing.T) {
	moods := services.NewMoodService(memory.New().Moods(), services.NewCacheService(nil))
	ok, err := moods.Exists(context.Background(), 3)
	if err != nil || !ok {
		t.Fatalf("expected mood 3 to exist, got %v %v", ok, err)
	}
}

func TestCacheTTLIsClamped(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	cache := services.NewCacheService(client)

	if err := cache.SetWithTTL(ctx, "short", 1, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.SetWithTTL(ctx, "long", 1, 48*time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL(services.CacheKeyPrefix + "short"); ttl != services.MinCacheTTL {
		t.Fatalf("short ttl not raised: %s", ttl)
	}
	if ttl := mr.TTL(services.CacheKeyPrefix + "long"); ttl != services.MaxCacheTTL {
		t.Fatalf("long ttl not capped: %s", ttl)
	}

	var got int
	hit, err := cache.Get(ctx, "short", &got)
	if err != nil || !hit || got != 1 {
		t.Fatalf("expected cached 1, got hit=%v value=%d err=%v", hit, got, err)
	}

	mr.Close()
	hit, err = cache.Get(ctx, "short", &got)
	if hit || err != nil {
		t.Fatalf("an unreachable redis should read as a miss, got hit=%v err=%v", hit, err)
	}
}
