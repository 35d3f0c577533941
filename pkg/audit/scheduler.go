package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
)

// pruneTimeout bounds one pruning pass.
const pruneTimeout = time.Minute

// Scheduler prunes old audit records on a cron schedule.
type Scheduler struct {
	store         *Store
	cron          *cron.Cron
	schedule      string
	retentionDays int
	log           *logging.Logger
}

// NewScheduler creates a scheduler that deletes records older than
// retentionDays whenever the cron schedule fires.
func NewScheduler(store *Store, schedule string, retentionDays int, log *logging.Logger) *Scheduler {
	return &Scheduler{
		store:         store,
		cron:          cron.New(),
		schedule:      schedule,
		retentionDays: retentionDays,
		log:           log,
	}
}

// Start validates the schedule and begins pruning in the background until
// ctx is cancelled. An empty schedule disables pruning.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.schedule == "" {
		s.log.Info("audit prune schedule not configured, retention disabled")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid audit prune schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runPrune); err != nil {
		return fmt.Errorf("scheduling audit pruning: %w", err)
	}

	s.cron.Start()
	s.log.Info("audit retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule. Already-running pruning passes finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("audit pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("audit pruning completed", "deleted_count", deleted, "cutoff", cutoff)
	}
}
