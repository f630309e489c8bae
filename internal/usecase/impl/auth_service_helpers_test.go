package impl

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"booksum/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.BcryptCost = 4
	cfg.Auth.HashWorkers = 2
	cfg.RateLimit.MaxAttempts = 5
	cfg.RateLimit.Window = 15 * time.Minute
	cfg.Store.Timeout = time.Second

	return cfg
}

type recordedOutcome struct {
	operation string
	outcome   string
}

type outcomeSpy struct {
	mu   sync.Mutex
	seen []recordedOutcome
}

func (s *outcomeSpy) ObserveOutcome(operation, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, recordedOutcome{operation: operation, outcome: outcome})
}

func (s *outcomeSpy) last() recordedOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.seen) == 0 {
		return recordedOutcome{}
	}

	return s.seen[len(s.seen)-1]
}
