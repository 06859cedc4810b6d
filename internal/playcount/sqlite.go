package playcount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSink keeps per-game play totals in a SQLite file.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens path (":memory:" works) and creates the table.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the play_counts table.
func (s *SQLiteSink) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS play_counts (
		game_id    TEXT PRIMARY KEY,
		plays      INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("migrate play_counts: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Notify(ctx context.Context, gameID string) error {
	if gameID == "" {
		return ErrNoGameID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO play_counts (game_id, plays, updated_at)
		 VALUES (?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(game_id) DO UPDATE
		 SET plays = plays + 1, updated_at = CURRENT_TIMESTAMP`,
		gameID,
	)
	if err != nil {
		return fmt.Errorf("record play for %q: %w", gameID, err)
	}
	return nil
}

// Plays returns the total recorded for gameID, zero if none.
func (s *SQLiteSink) Plays(ctx context.Context, gameID string) (int64, error) {
	var plays int64
	err := s.db.QueryRowContext(ctx, `SELECT plays FROM play_counts WHERE game_id = ?`, gameID).Scan(&plays)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read plays for %q: %w", gameID, err)
	}
	return plays, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }
