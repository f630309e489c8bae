// Package ratelimit implements repository.AttemptLedger, the failed-login
// ledger that backs brute-force mitigation.
package ratelimit

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"booksum/internal/domain/repository"

	"github.com/google/uuid"
)

// MemoryLedger keeps the ledger in process memory. A single mutex guards the
// whole map, so each Reserve runs its prune, check and append as one unit.
type MemoryLedger struct {
	mu       sync.Mutex
	window   time.Duration
	now      func() time.Time
	attempts map[string][]attempt
}

type attempt struct {
	at    time.Time
	token string
}

var _ repository.AttemptLedger = (*MemoryLedger)(nil)

// NewMemoryLedger creates an empty ledger. A nil clock means time.Now.
func NewMemoryLedger(window time.Duration, clock func() time.Time) *MemoryLedger {
	if clock == nil {
		clock = time.Now
	}

	return &MemoryLedger{
		window:   window,
		now:      clock,
		attempts: make(map[string][]attempt),
	}
}

// Count prunes expired attempts for key and returns the remainder.
func (l *MemoryLedger) Count(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pruneLocked(key, l.now())), nil
}

// Reserve records an attempt at the current time unless limit attempts are
// already inside the window.
func (l *MemoryLedger) Reserve(_ context.Context, key string, limit int) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.pruneLocked(key, now)
	if len(kept) >= limit {
		return "", false, nil
	}

	token := uuid.NewString()
	l.attempts[key] = append(kept, attempt{at: now, token: token})

	return token, true, nil
}

// Release removes the attempt identified by token.
func (l *MemoryLedger) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps, ok := l.attempts[key]
	if !ok {
		return nil
	}

	stamps = slices.DeleteFunc(stamps, func(a attempt) bool { return a.token == token })
	if len(stamps) == 0 {
		delete(l.attempts, key)

		return nil
	}
	l.attempts[key] = stamps

	return nil
}

// Reset removes the entry for key.
func (l *MemoryLedger) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, key)

	return nil
}

// Sweep prunes every key and returns how many entries were dropped.
func (l *MemoryLedger) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	before := len(l.attempts)
	for key := range l.attempts {
		l.pruneLocked(key, now)
	}

	return before - len(l.attempts)
}

// Len reports how many identifiers currently hold an entry.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.attempts)
}

// pruneLocked drops attempts older than now-window; one exactly at the
// cutoff is kept. Entries left empty are deleted. Attempts are appended in
// order, so the first kept index splits the slice.
func (l *MemoryLedger) pruneLocked(key string, now time.Time) []attempt {
	stamps, ok := l.attempts[key]
	if !ok {
		return nil
	}

	cutoff := now.Add(-l.window)
	i := 0
	for i < len(stamps) && stamps[i].at.Before(cutoff) {
		i++
	}

	if i == len(stamps) {
		delete(l.attempts, key)

		return nil
	}

	kept := stamps[i:]
	l.attempts[key] = kept

	return kept
}

// Janitor periodically sweeps a MemoryLedger until stopped.
type Janitor struct {
	ledger   *MemoryLedger
	interval time.Duration
	logger   *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// NewJanitor creates a janitor; call Start to begin sweeping.
func NewJanitor(ledger *MemoryLedger, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in the background.
func (j *Janitor) Start() {
	go j.loop()
}

// Stop ends the sweep loop and waits for it, or for ctx.
func (j *Janitor) Stop(ctx context.Context) error {
	close(j.stop)

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Janitor) loop() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			if dropped := j.ledger.Sweep(); dropped > 0 {
				j.logger.Debug("Swept login attempt ledger", slog.Int("dropped", dropped), slog.Int("remaining", j.ledger.Len()))
			}
		}
	}
}
