package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/moodjournal-backend/internal/config"
	"github.com/AnshRaj112/moodjournal-backend/internal/handlers"
	"github.com/AnshRaj112/moodjournal-backend/internal/middleware"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

// requestTimeout bounds every request, uploads included.
const requestTimeout = 30 * time.Second

// Deps is everything the router needs from main.
type Deps struct {
	Config   *config.Config
	Handler  *handlers.Handler
	Sessions *services.SessionService
	Redis    *redis.Client
	// StorageDir is served read-only under /storage when images are kept on disk.
	StorageDir string
}

func SetupRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no rate limit)
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
		// Non-production: Redis-based rate limit only
		if deps.Config.IsProduction() {
			for _, mw := range middleware.ProductionSecurity(deps.Config.AllowedHost) {
				r.Use(mw)
			}
		} else {
			r.Use(middleware.RedisRateLimit(deps.Redis))
		}

		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Get("/moods", h.Moods)

		if deps.StorageDir != "" {
			r.Get("/storage/*", handlers.StorageFiles(deps.StorageDir))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Sessions))

			r.Delete("/logout", h.Logout)
			r.Get("/user", h.User)

			r.Get("/index", h.Index)
			r.Get("/index/{id}", h.Show)
			r.With(middleware.UploadRateLimit()).Post("/journal", h.Store)
			r.Patch("/journal/{id}", h.Update)
			r.Delete("/journal/{id}", h.Delete)
		})
	})

	return r
}
