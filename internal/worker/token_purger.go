package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/techaway/backend/internal/repository"
)

// TokenPurger periodically deletes refresh-token rows that have passed their
// retention deadline. Revoked rows are kept until then so replay detection
// keeps working across the token's lifetime.
type TokenPurger struct {
	refresh  repository.RefreshTokenRepository
	logger   *zap.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewTokenPurger builds the worker. A non-positive interval defaults to one
// hour.
func NewTokenPurger(refresh repository.RefreshTokenRepository, logger *zap.Logger, interval time.Duration) *TokenPurger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenPurger{
		refresh:  refresh,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the purge loop until Stop is called or ctx is cancelled.
func (w *TokenPurger) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
				w.purge(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (w *TokenPurger) Stop() {
	close(w.stop)
	<-w.done
}

func (w *TokenPurger) purge(ctx context.Context) {
	purged, err := w.refresh.PurgeExpired(ctx)
	if err != nil {
		w.logger.Error("refresh token purge failed", zap.Error(err))
		return
	}
	if purged > 0 {
		w.logger.Info("purged expired refresh tokens", zap.Int64("count", purged))
	}
}
