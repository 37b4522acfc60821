package model

import "time"

// Booking pairs one mandatory outbound seat hold with an optional
// return hold, representing a single checkout attempt.  The record is
// written once, inside the same transaction that created the holds,
// and holds no inventory of its own; downstream ticket issuance
// consumes it to find the holds to confirm.
//
// Fields:
//  ID             – primary key identifier (UUID).
//  OutboundHoldID – the outbound leg's seat hold.
//  ReturnHoldID   – the return leg's seat hold (nil for one-way trips).
//  CreatedAt      – when the checkout attempt was recorded.
type Booking struct {
	ID             string    // bookings.id
	OutboundHoldID string    // bookings.outbound_hold_id
	ReturnHoldID   *string   // bookings.return_hold_id (nullable)
	CreatedAt      time.Time // bookings.created_at
}
