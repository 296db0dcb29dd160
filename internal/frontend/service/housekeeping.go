package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/store"
)

// DefaultHousekeepingInterval is used when no interval is configured.
const DefaultHousekeepingInterval = 5 * time.Minute

// HousekeepingService periodically removes stale session state: PKCE
// verifiers whose login was never completed and cookies past their expiry.
type HousekeepingService struct {
	Store       store.Store
	Logger      *slog.Logger
	Interval    time.Duration
	VerifierTTL time.Duration
	Now         func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval falls back to DefaultHousekeepingInterval.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval, verifierTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}

	return &HousekeepingService{
		Store:       s,
		Logger:      logger,
		Interval:    interval,
		VerifierTTL: verifierTTL,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down and waits for an in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// CleanupResult counts what one cleanup pass removed.
type CleanupResult struct {
	Verifiers int64
	Cookies   int64
}

// Cleanup runs one pass. Each deletion is independent; a failure is logged
// and does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupResult {
	now := s.Now()
	var res CleanupResult

	if s.VerifierTTL > 0 {
		n, err := s.Store.Verifiers().DeleteVerifiersBefore(ctx, now.Add(-s.VerifierTTL))
		if err != nil {
			s.Logger.Error("failed to delete stale verifiers", "error", err)
		} else {
			res.Verifiers = n
		}
	}

	n, err := s.Store.Cookies().DeleteExpiredCookies(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired cookies", "error", err)
	} else {
		res.Cookies = n
	}

	s.Logger.Debug("housekeeping cleanup completed",
		"verifiers_deleted", res.Verifiers,
		"cookies_deleted", res.Cookies,
	)
	return res
}
