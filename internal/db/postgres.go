package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates the snapshot table. The whole menu lives in one
// jsonb row that is replaced on every save.
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	snapshotTableSQL := `
		CREATE TABLE IF NOT EXISTS menu_snapshots (
			id INT PRIMARY KEY CHECK (id = 1),
			version BIGINT NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL,
			data JSONB NOT NULL
		)
	`
	if _, err := db.Exec(ctx, snapshotTableSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
