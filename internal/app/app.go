package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/wordle-duel/internal/config"
	"example.com/wordle-duel/internal/game"
	"example.com/wordle-duel/internal/httpapi"
	"example.com/wordle-duel/internal/migrate"
	"example.com/wordle-duel/internal/results"
	"example.com/wordle-duel/internal/solo"
	"example.com/wordle-duel/internal/words"
)

type App struct {
	cfg config.Config
	log zerolog.Logger

	rdb      *redis.Client
	archive  results.Store
	archiver *results.Archiver

	coord *game.Coordinator
	games *solo.Service

	handler http.Handler
	srv     *http.Server
	addr    atomic.Value // string
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	list, err := words.Load(cfg.Game.WordsFile)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	selector, err := words.NewSelector(list, nil)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	log.Info().Int("words", selector.Len()).Str("file", cfg.Game.WordsFile).Msg("dictionary loaded")

	var recorder results.Recorder = results.Discard{}
	var stats httpapi.Stats
	if cfg.Results.Driver != results.DriverNone {
		if err := a.openArchive(ctx); err != nil {
			return nil, err
		}
		a.archiver = results.NewArchiver(a.archive, 0, log)
		recorder = a.archiver
		stats = a.archive
	}

	var store solo.Store
	switch cfg.Game.Store {
	case config.StoreRedis:
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		store = solo.NewRedisStore(a.rdb, cfg.Game.IdleTTL)
	default:
		store = solo.NewMemoryStore(cfg.Game.IdleTTL, cfg.Game.MaxGames)
	}
	a.games = solo.NewService(store, selector, cfg.Game.MaxRounds, recorder, log)

	a.coord = game.NewCoordinator(game.Config{
		MaxRounds:     cfg.Game.MaxRounds,
		RoomIdleTTL:   cfg.Game.RoomIdleTTL,
		SweepInterval: cfg.Game.SweepInterval,
	}, game.NewMemoryRoomStore(), selector, recorder, log)

	rooms := game.NewServer(game.ServerConfig{
		ClientOrigin: cfg.HTTP.ClientOrigin,
		PingPeriod:   cfg.WS.PingPeriod,
		WriteWait:    cfg.WS.WriteWait,
		ReadWait:     cfg.WS.ReadWait,
		SendBuffer:   cfg.WS.SendBuffer,
	}, a.coord, log)

	a.handler = httpapi.NewRouter(httpapi.RouterConfig{
		ClientOrigin:   cfg.HTTP.ClientOrigin,
		HandlerTimeout: cfg.HTTP.HandlerTimeout,
	}, &httpapi.GameHandler{Games: a.games, Stats: stats}, rooms, log)

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	return a, nil
}

func (a *App) openArchive(ctx context.Context) error {
	st, err := results.Open(ctx, a.cfg.Results.Driver, a.cfg.Results.DSN)
	if err != nil {
		return fmt.Errorf("results archive: %w", err)
	}
	a.archive = st

	if !a.cfg.Results.RunMigrations {
		return nil
	}
	if withDB, ok := st.(interface{ DB() *sql.DB }); ok {
		err = migrate.UpDB(withDB.DB(), a.cfg.Results.Driver, a.log)
	} else {
		err = migrate.Up(a.cfg.Results.Driver, a.cfg.Results.DSN, a.log)
	}
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Handler is the full route tree, for tests and embedding.
func (a *App) Handler() http.Handler { return a.handler }

// Addr is the bound listen address once Run has started listening.
func (a *App) Addr() string {
	if v, ok := a.addr.Load().(string); ok {
		return v
	}
	return ""
}

// Run serves HTTP and runs the room sweeper and the result archiver until
// ctx is cancelled or one of them fails. The archiver outlives the HTTP
// server so results recorded by in-flight requests are still written.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("listen %s: %w", a.cfg.HTTP.Addr, err)
	}
	a.addr.Store(ln.Addr().String())

	archiveCtx, stopArchiver := context.WithCancel(context.Background())
	defer stopArchiver()

	g, gctx := errgroup.WithContext(ctx)

	a.log.Info().Str("addr", ln.Addr().String()).Msg("http server starting")

	g.Go(func() error {
		err := a.srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopArchiver()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info().Msg("http server shutting down")
		return a.srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error { return a.coord.Run(gctx) })
	if a.archiver != nil {
		g.Go(func() error { return a.archiver.Run(archiveCtx) })
	}

	err = g.Wait()
	if cerr := a.Close(); cerr != nil {
		a.log.Warn().Err(cerr).Msg("close")
	}
	return err
}

// Close releases external connections. Safe to call more than once.
func (a *App) Close() error {
	var errs []error
	if a.archive != nil {
		errs = append(errs, a.archive.Close())
		a.archive = nil
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
		a.rdb = nil
	}
	return errors.Join(errs...)
}
