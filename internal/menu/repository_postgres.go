package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const remoteCallTimeout = 10 * time.Second

// PostgresRepository keeps the snapshot in a single jsonb row, replaced
// wholesale on every save. Concurrent writers race and the last commit
// wins; there is no row-level merging to go wrong.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	query := `
		SELECT data
		FROM menu_snapshots
		WHERE id = 1
	`

	var raw []byte
	err := r.db.QueryRow(ctx, query).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	snap.Normalize()
	return &snap, nil
}

func (r *PostgresRepository) Save(ctx context.Context, snap *Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO menu_snapshots (id, version, last_updated, data)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			version      = EXCLUDED.version,
			last_updated = EXCLUDED.last_updated,
			data         = EXCLUDED.data
	`

	if _, err := r.db.Exec(ctx, query, snap.Version, snap.LastUpdated, data); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
