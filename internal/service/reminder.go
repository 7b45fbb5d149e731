package service

import (
	"context"
	"sync"
	"time"

	"github.com/dfarias/chaperone/internal/domain"
	"go.uber.org/zap"
)

const (
	// Default reminder cadence
	defaultReminderInterval = 15 * time.Minute

	// A pending handoff older than this gets a nudge on every sweep
	defaultReminderMaxAge = 30 * time.Minute
)

// ReminderService sweeps for pending handoffs that have sat unattended and
// nudges operators about them.
type ReminderService struct {
	handoffs domain.HandoffStore
	convs    domain.ConversationStore
	notifier domain.OperatorNotifier
	logger   *zap.Logger

	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReminderService(handoffs domain.HandoffStore, convs domain.ConversationStore, notifier domain.OperatorNotifier, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		handoffs: handoffs,
		convs:    convs,
		notifier: notifier,
		logger:   logger,
		interval: defaultReminderInterval,
		maxAge:   defaultReminderMaxAge,
		stopCh:   make(chan struct{}),
	}
}

func (s *ReminderService) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *ReminderService) SetMaxAge(d time.Duration) {
	s.maxAge = d
}

// Start runs the sweep on a periodic schedule in a background goroutine.
func (s *ReminderService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("handoff reminder started",
			zap.Duration("interval", s.interval),
			zap.Duration("max_age", s.maxAge))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := s.Run(ctx); err != nil {
					s.logger.Error("handoff reminder run failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("handoff reminder stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper.
func (s *ReminderService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// Run performs one sweep. Per-handoff notification failures are logged and
// the sweep continues; only the listing itself can fail the run.
func (s *ReminderService) Run(ctx context.Context) error {
	stale, err := s.handoffs.ListPendingOlderThan(ctx, s.maxAge)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	for i := range stale {
		record := &stale[i]
		conv, err := s.convs.GetByID(ctx, record.ConversationID)
		if err != nil {
			s.logger.Warn("reminder conversation lookup failed",
				zap.String("handoff_id", record.ID.String()), zap.Error(err))
			continue
		}
		if err := s.notifier.Notify(ctx, conv, domain.OperatorEvent{
			Kind:    domain.OperatorEventHandoffReminder,
			Handoff: record,
			Reason:  "handoff pending past the attention window",
		}); err != nil {
			s.logger.Warn("reminder notify failed",
				zap.String("handoff_id", record.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("handoff reminder sweep complete", zap.Int("stale_count", len(stale)))
	return nil
}
