package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"savoria/internal/db"
	"savoria/internal/menu"
	"savoria/internal/router"

	"github.com/joho/godotenv"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	backend := envOr("MENU_BACKEND", "file")
	dataDir := envOr("DATA_DIR", "./data")
	adminPassword := envOr("ADMIN_PASSWORD", "admin123")
	port := envOr("PORT", "5000")

	switch backend {
	case "postgres":
		requireEnv("DATABASE_URL")
	case "s3":
		requireEnv("S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET")
	}

	// ───────────────────────── STORE ─────────────────────────
	// The local repository is always the write-ahead leg; a shared
	// repository is added on top when cross-device sync is wanted.
	ctx := context.Background()

	var local menu.Repository
	switch backend {
	case "memory":
		local = menu.NewInMemoryRepository()
	case "bolt":
		boltRepo, err := menu.OpenBolt(filepath.Join(dataDir, "menu.db"))
		if err != nil {
			log.Fatal("❌ Bolt init failed:", err)
		}
		defer boltRepo.Close()
		local = boltRepo
	default:
		local = menu.NewFileRepository(dataDir)
	}

	var remote menu.Repository
	switch backend {
	case "postgres":
		pgDB := db.ConnectPostgres()
		defer pgDB.Close()
		remote = menu.NewPostgresRepository(pgDB)
	case "s3":
		s3Repo, err := menu.NewS3Repository(ctx, menu.S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
		})
		if err != nil {
			log.Fatal("❌ S3 init failed:", err)
		}
		remote = s3Repo
	}

	var opts []menu.Option
	if d := envDuration("MENU_CACHE_TTL"); d > 0 {
		opts = append(opts, menu.WithCacheTTL(d))
	}
	if d := envDuration("MENU_POLL_INTERVAL"); d > 0 {
		opts = append(opts, menu.WithPollInterval(d))
	}

	store := menu.NewStore(local, remote, opts...)
	snap := store.Initialize(ctx)
	defer store.Dispose()

	log.Printf("✅ Menu store ready: %d items, version %d (backend=%s)",
		len(snap.Items), snap.Version, backend)

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(store, adminPassword)

	log.Println("🚀 Listening on port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(keys ...string) {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("❌ Invalid %s: %v", key, err)
	}
	return d
}
