package model

import "time"

// SeatHoldStatus enumerates the states of a seat hold.  "held" is the
// only initial state.  The two terminal states are reached through
// exactly one edge each: held→confirmed when a ticket is issued
// against the hold, and held→expired when the hold is released (by
// the expiration reaper or an explicit cancellation).  Both
// transitions are performed with conditional updates so that a hold
// leaves the held state at most once.
type SeatHoldStatus string

const (
	SeatHoldHeld      SeatHoldStatus = "held"
	SeatHoldConfirmed SeatHoldStatus = "confirmed"
	SeatHoldExpired   SeatHoldStatus = "expired"
)

// SeatHold is a time-bounded claim on a number of seats of exactly one
// schedule.  While a hold is live (held or confirmed) its quantity is
// subtracted from the schedule's available seats; an expired hold has
// returned its seats exactly once.
//
// Fields:
//  ID         – primary key identifier (UUID).
//  ScheduleID – schedule whose seats are claimed.
//  Quantity   – number of seats claimed (> 0).
//  Status     – see SeatHoldStatus.
//  HeldAt     – when the hold was created.
//  ExpiresAt  – HeldAt plus the configured TTL; after this instant the
//               reaper may release the hold.
//  ReleasedAt – set only on the transition to expired.
type SeatHold struct {
	ID         string         // seat_holds.id
	ScheduleID string         // seat_holds.schedule_id
	Quantity   int            // seat_holds.quantity
	Status     SeatHoldStatus // seat_holds.status
	HeldAt     time.Time      // seat_holds.held_at
	ExpiresAt  time.Time      // seat_holds.expires_at
	ReleasedAt *time.Time     // seat_holds.released_at (nullable)
}

// Live reports whether the hold still counts against its schedule's
// available seats.
func (h *SeatHold) Live() bool {
	return h.Status == SeatHoldHeld || h.Status == SeatHoldConfirmed
}
