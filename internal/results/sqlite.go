package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates) the database file at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the handle for migrations.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Insert(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_results (mode, game_id, winner, rounds, max_rounds, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(r.Mode), r.GameID, r.Winner, r.Rounds, r.MaxRounds, r.FinishedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *SQLiteStore) Summary(ctx context.Context) ([]SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, winner, COUNT(1)
		FROM game_results
		GROUP BY mode, winner
		ORDER BY mode, winner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SummaryRow{}
	for rows.Next() {
		var row SummaryRow
		var mode string
		if err := rows.Scan(&mode, &row.Winner, &row.Count); err != nil {
			return nil, err
		}
		row.Mode = Mode(mode)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
