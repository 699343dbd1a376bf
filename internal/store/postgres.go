package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS game_saves (
		slot       TEXT PRIMARY KEY,
		save_id    UUID NOT NULL,
		version    INTEGER NOT NULL,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps one row per slot. The blob goes into a JSONB column;
// its save_id and version are copied into columns of their own so saves can
// be queried without parsing the document.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects, pings and creates the table if missing.
func NewPostgresStore(ctx context.Context, url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &PostgresStore{db: db, logger: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create game_saves: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// saveHeader is the part of a snapshot mirrored into columns.
type saveHeader struct {
	SaveID  string `json:"save_id"`
	Version int    `json:"version"`
}

func (s *PostgresStore) Save(ctx context.Context, slot string, blob []byte) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	var h saveHeader
	if err := json.Unmarshal(blob, &h); err != nil {
		return fmt.Errorf("failed to read save header: %w", err)
	}
	id, err := uuid.Parse(h.SaveID)
	if err != nil {
		return fmt.Errorf("failed to parse save id %q: %w", h.SaveID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO game_saves (slot, save_id, version, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (slot) DO UPDATE
		SET save_id = EXCLUDED.save_id, version = EXCLUDED.version, data = EXCLUDED.data, updated_at = now()
	`, slot, id, h.Version, string(blob))
	if err != nil {
		return fmt.Errorf("failed to upsert save: %w", err)
	}
	s.logger.Debug("save written", "slot", slot, "save_id", id, "bytes", len(blob))
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	if err := checkSlot(slot); err != nil {
		return nil, false, err
	}
	var data string
	err := s.db.QueryRow(ctx, `SELECT data::text FROM game_saves WHERE slot = $1`, slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load save: %w", err)
	}
	return []byte(data), true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, slot string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM game_saves WHERE slot = $1`, slot)
	if err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	s.logger.Debug("save deleted", "slot", slot, "rows", cmd.RowsAffected())
	return nil
}
