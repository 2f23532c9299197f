package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/moodjournal-backend/internal/database/memory"
	"github.com/AnshRaj112/moodjournal-backend/internal/models"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newSessions(t *testing.T) (*services.SessionService, string) {
	t.Helper()
	store := memory.New()
	user := models.User{Name: "jo", Email: "jo@example.com", PasswordHash: "x"}
	if err := store.Users().Create(context.Background(), &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sessions := services.NewSessionService(store.Tokens(), store.Users())
	token, err := sessions.CreateSession(context.Background(), user, "test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sessions, token
}

func TestRequireAuth(t *testing.T) {
	sessions, token := newSessions(t)

	var seen models.User
	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		if _, ok := TokenFromContext(r.Context()); !ok {
			t.Error("token missing from context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if tc.want == http.StatusUnauthorized && rec.Body.String() != unauthenticatedBody {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
		})
	}
	if seen.Email != "jo@example.com" {
		t.Fatalf("handler saw user %+v", seen)
	}
}

func TestRedisRateLimitBlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	handler := RedisRateLimit(client)(okHandler)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/index", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < RateLimitMaxRequests; i++ {
		if rec := send(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := send(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", rec.Code)
	}
	if !mr.Exists(BlockedIPKeyPrefix + "203.0.113.7") {
		t.Fatal("ip was not blocked")
	}

	// the block outlives the counting window
	mr.FastForward(RateLimitWindow + 1)
	if rec := send(); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("blocked ip should stay blocked, got %d", rec.Code)
	}
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	if rec := serve(RedisRateLimit(nil)(okHandler), "/index"); rec.Code != http.StatusOK {
		t.Fatalf("nil client should pass through, got %d", rec.Code)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()
	if rec := serve(RedisRateLimit(client)(okHandler), "/index"); rec.Code != http.StatusOK {
		t.Fatalf("redis outage should not reject requests, got %d", rec.Code)
	}
}

func TestLoginRateLimitOnlyOnCredentialRoutes(t *testing.T) {
	handler := LoginRateLimit()(okHandler)

	for i := 0; i < loginRateLimitBurst; i++ {
		if rec := serve(handler, "/login"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := serve(handler, "/login"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec := serve(handler, "/index"); rec.Code != http.StatusOK {
		t.Fatalf("other routes should not be limited, got %d", rec.Code)
	}
}

func TestHostCheck(t *testing.T) {
	handler := HostCheck("api.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "api.example.com:443"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("matching host rejected: %d", rec.Code)
	}

	req.Host = "evil.example.com"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign host accepted: %d", rec.Code)
	}
}

func TestUploadRateLimitIsPerUser(t *testing.T) {
	handler := UploadRateLimit()(okHandler)
	post := func(userID int64) int {
		req := httptest.NewRequest(http.MethodPost, "/journal", nil)
		req = req.WithContext(WithUser(req.Context(), models.User{ID: userID}, models.AccessToken{}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < uploadRateLimitBurst; i++ {
		if code := post(1); code != http.StatusOK {
			t.Fatalf("upload %d: expected 200, got %d", i+1, code)
		}
	}
	if code := post(1); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := post(2); code != http.StatusOK {
		t.Fatalf("another user should have their own budget, got %d", code)
	}
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
