package migrate

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed sql
var migrations embed.FS

// Up applies all pending migrations for the results archive.
// driver is "postgres" or "sqlite".
func Up(driver, dsn string, log zerolog.Logger) error {
	sqlDriver, dialect := "", ""
	switch driver {
	case "postgres":
		sqlDriver, dialect = "pgx", "postgres"
	case "sqlite":
		sqlDriver, dialect = "sqlite3", "sqlite3"
	default:
		return fmt.Errorf("migrations: unsupported driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("migrations: open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
		}
	}()

	return apply(db, driver, dialect, log)
}

func apply(db *sql.DB, driver, dialect string, log zerolog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrations: set dialect: %w", err)
	}

	dir := "sql/" + driver
	log.Info().Str("dir", dir).Msg("running database migrations")
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migrations: goose up: %w", err)
	}
	log.Info().Msg("database migrations applied")
	return nil
}

// UpDB applies migrations on an already open handle.
func UpDB(db *sql.DB, driver string, log zerolog.Logger) error {
	switch driver {
	case "postgres":
		return apply(db, driver, "postgres", log)
	case "sqlite":
		return apply(db, driver, "sqlite3", log)
	}
	return fmt.Errorf("migrations: unsupported driver %q", driver)
}
