package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/events"
	"taskboard/internal/metrics"
	"taskboard/internal/models"
	"taskboard/internal/store"
)

// UrgentSweep periodically collects open tasks due within 24 hours and pushes
// them to subscribers.
type UrgentSweep struct {
	store store.Store
	pub   events.Publisher
	now   func() time.Time
	log   *slog.Logger
}

// NewUrgentSweep creates a sweep job.
func NewUrgentSweep(s store.Store, pub events.Publisher, now func() time.Time, log *slog.Logger) *UrgentSweep {
	return &UrgentSweep{store: s, pub: pub, now: now, log: log}
}

// Run performs one sweep and returns the urgent tasks it found.
func (u *UrgentSweep) Run(ctx context.Context) ([]models.Task, error) {
	now := u.now()
	urgent, err := u.store.UrgentTasks(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to collect urgent tasks: %w", err)
	}

	metrics.UrgentTasks.Set(float64(len(urgent)))

	if len(urgent) > 0 {
		u.log.Info("urgent tasks due within 24h", "count", len(urgent))
		u.pub.Publish(events.Event{Type: events.TypeUrgentTasks, Tasks: urgent, At: now})
	}
	return urgent, nil
}

// Job adapts Run to a cron callback.
func (u *UrgentSweep) Job() func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := u.Run(ctx); err != nil {
			u.log.Error("urgent sweep failed", "err", err)
		}
	}
}
