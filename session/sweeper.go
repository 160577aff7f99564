package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the sweeper scans for expired rows.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically deletes expired session rows. It is a storage
// reclamation optimization only: request handlers enforce expiry themselves,
// so a stopped or crashed sweeper is never observable through the API.
// A stopped Sweeper cannot be restarted; construct a new one.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewSweeper(store *Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Sweeper) Start() {
	go s.loop()
}

// Stop terminates the loop and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

func (s *Sweeper) loop() {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			removed, err := s.store.SweepExpired(context.Background())
			if err != nil {
				s.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Info("swept expired sessions", "removed", removed)
			}
		}
	}
}
