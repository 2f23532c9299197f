package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/moodjournal-backend/internal/config"
	"github.com/AnshRaj112/moodjournal-backend/internal/database"
	"github.com/AnshRaj112/moodjournal-backend/internal/handlers"
	"github.com/AnshRaj112/moodjournal-backend/internal/routes"
	"github.com/AnshRaj112/moodjournal-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Credential, token, mood and journal stores
	var repos *database.Repositories
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("⚠️  WARNING: STORE_DRIVER=memory, all data is lost on restart")
		repos = database.NewMemoryRepositories()
	case config.StorePostgres:
		log.Printf("Connecting to PostgreSQL...")
		db, err := database.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL:", err)
		}
		defer db.Close()
		repos = database.NewRepositories(db)
	default:
		log.Fatalf("Unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver)
	}

	if cfg.JournalStore == config.JournalStoreMongo {
		log.Printf("MongoDB URI: %s", maskURI(cfg.MongoURI))
		mongoDB, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer database.DisconnectMongo(mongoDB)

		mongoJournals := database.NewMongoJournalStore(mongoDB)
		if err := mongoJournals.EnsureIndexes(context.Background()); err != nil {
			log.Printf("⚠️  WARNING: failed to ensure MongoDB journal indexes: %v", err)
		} else {
			log.Println("✅ MongoDB journal indexes ensured")
		}
		repos.Journals = mongoJournals
	} else if cfg.JournalStore != config.JournalStorePostgres {
		log.Fatalf("Unknown JOURNAL_STORE %q (want postgres or mongo)", cfg.JournalStore)
	}

	// Redis backs the mood cache and the development rate limiter; both work without it
	log.Printf("Connecting to Redis...")
	var redisClient *redis.Client
	if client, err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Printf("⚠️  WARNING: Redis unavailable, running without cache: %v", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	// Image storage
	var imageStore services.ImageStore
	var storageDir string
	switch cfg.ImageStore {
	case config.ImageStoreLocal:
		local, err := services.NewLocalImageStore(cfg.StorageDir)
		if err != nil {
			log.Fatal("Failed to prepare image storage:", err)
		}
		imageStore = local
		storageDir = local.Root()
		log.Printf("✅ Storing images under %s", storageDir)
	case config.ImageStoreCloudinary:
		if !cfg.HasCloudinary() {
			log.Fatal("IMAGE_STORE=cloudinary but Cloudinary credentials are missing")
		}
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Fatal("Failed to initialize Cloudinary:", err)
		}
		imageStore = cld
		log.Println("✅ Cloudinary service initialized")
	default:
		log.Fatalf("Unknown IMAGE_STORE %q (want local or cloudinary)", cfg.ImageStore)
	}

	sessions := services.NewSessionService(repos.Tokens, repos.Users)
	moods := services.NewMoodService(repos.Moods, services.NewCacheService(redisClient))
	handler := handlers.New(
		services.NewAuthService(repos.Users, sessions),
		sessions,
		services.NewJournalService(repos.Journals, moods, services.NewImageService(imageStore)),
		moods,
	)

	router := routes.SetupRoutes(routes.Deps{
		Config:     cfg,
		Handler:    handler,
		Sessions:   sessions,
		Redis:      redisClient,
		StorageDir: storageDir,
	})
	if cfg.IsProduction() {
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Mood journal backend running on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error on server shutdown: %v", err)
		return
	}
	log.Println("Server shut down successfully")
}

// maskURI hides the password of a user:pass@host connection string.
func maskURI(uri string) string {
	schemeEnd := strings.Index(uri, "://")
	at := strings.LastIndex(uri, "@")
	if schemeEnd == -1 || at == -1 || at < schemeEnd {
		return uri
	}
	credentials := uri[schemeEnd+3 : at]
	user, _, ok := strings.Cut(credentials, ":")
	if !ok {
		return uri
	}
	return uri[:schemeEnd+3] + user + ":***" + uri[at:]
}
