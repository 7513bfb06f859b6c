package services

import (
	"context"
	"time"

	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// SessionJanitor periodically deletes expired sessions
type SessionJanitor struct {
	sessionRepo ports.SessionRepository
	interval    time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

// NewSessionJanitor creates a janitor sweeping every interval
func NewSessionJanitor(sessionRepo ports.SessionRepository, interval time.Duration, logger *logger.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SessionJanitor{
		sessionRepo: sessionRepo,
		interval:    interval,
		logger:      logger.WithComponent("session_janitor"),
		now:         time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			j.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep deletes sessions that have expired and reports how many went
func (j *SessionJanitor) Sweep(ctx context.Context) int64 {
	removed, err := j.sessionRepo.DeleteExpired(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Errorw("Session cleanup failed", "error", err)
		}
		return 0
	}
	if removed > 0 {
		j.logger.Infow("Expired sessions removed", "count", removed)
	}
	return removed
}
