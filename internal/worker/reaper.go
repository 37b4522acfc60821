// Package worker contains the background maintenance loops that share
// the storage backend with the request server.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/queue"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"
)

// HoldReleaser is the narrow surface the reaper needs from the
// reservation engine.  ReleaseExpiredHold must be conditional on the
// hold still being held and past its deadline, so concurrent reaper
// instances are safe to run redundantly.
type HoldReleaser interface {
	ExpiredHolds(ctx context.Context) ([]model.SeatHold, error)
	ReleaseExpiredHold(ctx context.Context, holdID string) (released bool, seatsRestored int, err error)
}

// EventPublisher reports released holds to the message broker.  It may
// be nil, in which case no events are emitted.
type EventPublisher func(ctx context.Context, event queue.HoldReleasedEvent) error

// Reaper periodically finds seat holds whose deadline has passed and
// reverses their inventory effect.  Each hold is released in its own
// transaction; one stuck hold must not block the release of the
// others, so per-hold failures are logged and skipped.  Release is
// idempotent (a conditional update), so anything skipped is retried on
// the next tick.
type Reaper struct {
	releaser HoldReleaser
	interval time.Duration
	publish  EventPublisher
}

// NewReaper constructs a Reaper sweeping at the given interval.
func NewReaper(releaser HoldReleaser, interval time.Duration, publish EventPublisher) *Reaper {
	if releaser == nil {
		panic("nil releaser passed to NewReaper")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{releaser: releaser, interval: interval, publish: publish}
}

// Run executes the sweep loop until the context is cancelled.  It is a
// fire-and-forget maintenance loop: no result is returned to any
// caller and there is no external trigger.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("hold-reaper: started, sweeping every %s", r.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("hold-reaper: stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs one pass: list expired holds, release each in its own
// transaction, and log a summary of holds released and seats restored.
func (r *Reaper) Sweep(ctx context.Context) (releasedCount, seatsRestored int) {
	holds, err := r.releaser.ExpiredHolds(ctx)
	if err != nil {
		log.Printf("hold-reaper: failed to list expired holds: %v", err)
		return 0, 0
	}
	if len(holds) == 0 {
		return 0, 0
	}

	log.Printf("hold-reaper: found %d expired holds", len(holds))

	for _, h := range holds {
		released, seats, err := r.releaser.ReleaseExpiredHold(ctx, h.ID)
		if err != nil {
			log.Printf("hold-reaper: failed to release hold %s: %v", h.ID, err)
			continue
		}
		if !released {
			// Confirmed or released by a concurrent actor between the
			// listing and the conditional update.
			continue
		}
		releasedCount++
		seatsRestored += seats

		if r.publish != nil {
			ev := queue.HoldReleasedEvent{
				HoldID:        h.ID,
				ScheduleID:    h.ScheduleID,
				SeatsRestored: seats,
				ReleasedAt:    time.Now().UTC().Format(time.RFC3339),
			}
			if err := r.publish(ctx, ev); err != nil {
				log.Printf("hold-reaper: failed to publish release event for hold %s: %v", h.ID, err)
			}
		}
	}

	if releasedCount > 0 {
		log.Printf("hold-reaper: released %d holds, %d seats restored", releasedCount, seatsRestored)
	}
	return releasedCount, seatsRestored
}

// compile-time check that the reservation service satisfies the
// reaper's dependency.
var _ HoldReleaser = (*service.ReservationService)(nil)
