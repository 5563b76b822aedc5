package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every runtime setting. It is loaded once in main and passed
// down explicitly.
type Config struct {
	Env string `env:"APP_ENV" env-default:"dev"`

	Log struct {
		Level  string `env:"LOG_LEVEL" env-default:"info"`
		Format string `env:"LOG_FORMAT" env-default:"console"` // console|json
	}

	HTTP struct {
		Port              string        `env:"PORT" env-default:"5001"`
		Addr              string        `env:"HTTP_ADDR"` // defaults to :PORT
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
		HandlerTimeout    time.Duration `env:"HTTP_HANDLER_TIMEOUT" env-default:"10s"`
		ClientOrigin      string        `env:"CLIENT_ORIGIN" env-default:"http://localhost:3000"`
	}

	Game struct {
		MaxRounds     int           `env:"MAX_ROUNDS" env-default:"6"`
		WordsFile     string        `env:"WORDS_FILE"`
		Store         string        `env:"GAME_STORE" env-default:"memory"` // memory|redis
		IdleTTL       time.Duration `env:"GAME_IDLE_TTL" env-default:"30m"`
		MaxGames      int           `env:"MAX_GAMES" env-default:"10000"`
		RoomIdleTTL   time.Duration `env:"ROOM_IDLE_TTL" env-default:"1h"`
		SweepInterval time.Duration `env:"SWEEP_INTERVAL" env-default:"1m"`
	}

	Redis struct {
		Addr string `env:"REDIS_ADDR" env-default:"localhost:6379"`
		DB   int    `env:"REDIS_DB" env-default:"0"`
	}

	WS struct {
		PingPeriod time.Duration `env:"WS_PING_PERIOD" env-default:"25s"`
		WriteWait  time.Duration `env:"WS_WRITE_WAIT" env-default:"10s"`
		ReadWait   time.Duration `env:"WS_READ_WAIT" env-default:"60s"`
		SendBuffer int           `env:"WS_SEND_BUFFER" env-default:"64"`
	}

	Results struct {
		Driver        string `env:"RESULTS_DRIVER" env-default:"none"` // none|postgres|sqlite
		DSN           string `env:"RESULTS_DSN"`
		RunMigrations bool   `env:"RUN_MIGRATIONS" env-default:"false"`
	}
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Load reads the environment, fills defaults and validates.
func Load() (Config, error) {
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if c.HTTP.Addr == "" && c.HTTP.Port != "" {
		c.HTTP.Addr = ":" + c.HTTP.Port
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Game.MaxRounds < 1 {
		return fmt.Errorf("MAX_ROUNDS must be at least 1, got %d", c.Game.MaxRounds)
	}
	switch c.Game.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("GAME_STORE=redis needs REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported GAME_STORE=%q (want memory|redis)", c.Game.Store)
	}
	switch c.Results.Driver {
	case "none":
	case "postgres", "sqlite":
		if c.Results.DSN == "" {
			return fmt.Errorf("RESULTS_DRIVER=%s needs RESULTS_DSN", c.Results.Driver)
		}
	default:
		return fmt.Errorf("unsupported RESULTS_DRIVER=%q (want none|postgres|sqlite)", c.Results.Driver)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want console|json)", c.Log.Format)
	}
	for name, d := range map[string]time.Duration{
		"GAME_IDLE_TTL":  c.Game.IdleTTL,
		"ROOM_IDLE_TTL":  c.Game.RoomIdleTTL,
		"SWEEP_INTERVAL": c.Game.SweepInterval,
		"WS_READ_WAIT":   c.WS.ReadWait,
		"WS_WRITE_WAIT":  c.WS.WriteWait,
		"WS_PING_PERIOD": c.WS.PingPeriod,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.WS.PingPeriod >= c.WS.ReadWait {
		return fmt.Errorf("WS_PING_PERIOD (%s) must be shorter than WS_READ_WAIT (%s)", c.WS.PingPeriod, c.WS.ReadWait)
	}
	return nil
}
