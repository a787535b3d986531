package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamlinkhq/teamlink/internal/invites/store"
)

// ExpiredInvitationRetention is how long a pending invitation lingers past
// its expiry before housekeeping deletes the row. Expiry itself is enforced
// at lookup time; this sweep only bounds table growth. Audit rows are never
// deleted.
const ExpiredInvitationRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes long-expired pending invitations.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup.
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-ExpiredInvitationRetention)

	if err := s.Store.Invitations().DeleteExpiredBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
		return
	}
	s.Logger.Debug("deleted long-expired invitations", "cutoff", cutoff)
}
