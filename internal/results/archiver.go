package results

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Archiver queues results in memory and writes them to a Store from Run.
type Archiver struct {
	store Store
	queue chan Result
	log   zerolog.Logger

	writeTimeout time.Duration
}

func NewArchiver(store Store, size int, log zerolog.Logger) *Archiver {
	if size <= 0 {
		size = 256
	}
	return &Archiver{
		store:        store,
		queue:        make(chan Result, size),
		log:          log.With().Str("component", "archiver").Logger(),
		writeTimeout: 5 * time.Second,
	}
}

// Record enqueues r, dropping it when the queue is full.
func (a *Archiver) Record(r Result) {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	select {
	case a.queue <- r:
	default:
		a.log.Warn().Str("mode", string(r.Mode)).Str("id", r.GameID).Msg("archive queue full, dropping result")
	}
}

// Run writes queued results until ctx is done, then drains what is left.
func (a *Archiver) Run(ctx context.Context) error {
	for {
		select {
		case r := <-a.queue:
			a.write(context.Background(), r)
		case <-ctx.Done():
			a.drain()
			return nil
		}
	}
}

func (a *Archiver) drain() {
	for {
		select {
		case r := <-a.queue:
			a.write(context.Background(), r)
		default:
			return
		}
	}
}

func (a *Archiver) write(ctx context.Context, r Result) {
	ctx, cancel := context.WithTimeout(ctx, a.writeTimeout)
	defer cancel()
	if err := a.store.Insert(ctx, r); err != nil {
		a.log.Error().Err(err).Str("mode", string(r.Mode)).Str("id", r.GameID).Msg("archive result")
		return
	}
	a.log.Debug().Str("mode", string(r.Mode)).Str("id", r.GameID).Str("winner", r.Winner).Msg("result archived")
}
