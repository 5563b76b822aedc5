package results

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, r Result) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO game_results (mode, game_id, winner, rounds, max_rounds, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(r.Mode), r.GameID, r.Winner, r.Rounds, r.MaxRounds, r.FinishedAt)
	return err
}

func (s *PostgresStore) Summary(ctx context.Context) ([]SummaryRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT mode, winner, COUNT(*)
		FROM game_results
		GROUP BY mode, winner
		ORDER BY mode, winner
	`)
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

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
