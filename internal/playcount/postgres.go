package playcount

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchplay/internal/logger"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS play_counts (
	game_id    TEXT PRIMARY KEY,
	plays      BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresSink keeps per-game play totals in PostgreSQL.
type PostgresSink struct {
	db *pgxpool.Pool
}

// ConnectPostgres opens a pool for dsn and checks it answers.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("database connected", "backend", "postgres")
	return &PostgresSink{db: db}, nil
}

// NewPostgresSink uses an existing pool.
func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

// Migrate creates the play_counts table.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate play_counts: %w", err)
	}
	return nil
}

func (s *PostgresSink) Notify(ctx context.Context, gameID string) error {
	if gameID == "" {
		return ErrNoGameID
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO play_counts (game_id, plays, updated_at)
		 VALUES ($1, 1, now())
		 ON CONFLICT (game_id) DO UPDATE
		 SET plays = play_counts.plays + 1, updated_at = now()`,
		gameID,
	)
	if err != nil {
		return fmt.Errorf("record play for %q: %w", gameID, err)
	}
	return nil
}

// Plays returns the total recorded for gameID, zero if none.
func (s *PostgresSink) Plays(ctx context.Context, gameID string) (int64, error) {
	var plays int64
	err := s.db.QueryRow(ctx, `SELECT plays FROM play_counts WHERE game_id = $1`, gameID).Scan(&plays)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read plays for %q: %w", gameID, err)
	}
	return plays, nil
}

func (s *PostgresSink) Close() { s.db.Close() }
