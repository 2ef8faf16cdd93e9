package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Timer drives the authoritative countdown: one sweep per interval over all
// counting sessions. Remaining time is always recomputed from the stored
// start instant, so a slow or missed tick converges to the same value.
type Timer struct {
	engine   *Engine
	interval time.Duration
}

func NewTimer(engine *Engine, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{engine: engine, interval: interval}
}

func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.timer").Dur("interval", t.interval).Msg("timer authority started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.timer").Msg("timer authority stopped")
			return
		case <-ticker.C:
			t.engine.Sweep()
		}
	}
}
