// Package results archives finished games and matches.
package results

import (
	"context"
	"fmt"
	"time"
)

type Mode string

const (
	ModeSolo Mode = "solo"
	ModeDuel Mode = "duel"
)

// Result is one finished game (solo) or match (duel).
type Result struct {
	Mode       Mode
	GameID     string
	Winner     string // solo: player|none, duel: 1|2|tie
	Rounds     int
	MaxRounds  int
	FinishedAt time.Time
}

// SummaryRow counts results per mode and outcome.
type SummaryRow struct {
	Mode   Mode   `json:"mode"`
	Winner string `json:"winner"`
	Count  int    `json:"count"`
}

// Recorder accepts results without blocking the caller.
type Recorder interface {
	Record(Result)
}

// Store is the durable side of the archive.
type Store interface {
	Insert(ctx context.Context, r Result) error
	Summary(ctx context.Context) ([]SummaryRow, error)
	Close() error
}

// Discard drops every result.
type Discard struct{}

func (Discard) Record(Result) {}

const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects the archive store for driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresStore(ctx, dsn)
	case DriverSQLite:
		return NewSQLiteStore(dsn)
	}
	return nil, fmt.Errorf("results: unsupported driver %q", driver)
}
