// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names for the reservation engine's domain events.
const (
	BookingCreatedQueue = "booking.created"
	HoldReleasedQueue   = "hold.released"
	TicketIssuedQueue   = "ticket.issued"
)

// BookingCreatedEvent is published after a checkout attempt commits.
// It contains enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID          string  `json:"booking_id"`
	OutboundHoldID     string  `json:"outbound_hold_id"`
	ReturnHoldID       *string `json:"return_hold_id,omitempty"`
	OutboundScheduleID string  `json:"outbound_schedule_id"`
	ReturnScheduleID   *string `json:"return_schedule_id,omitempty"`
	Quantity           int     `json:"quantity"`
	ExpiresAt          string  `json:"expires_at"`
	CreatedAt          string  `json:"created_at"`
}

// HoldReleasedEvent is published by the expiration reaper for each hold
// whose seats it returned to inventory.
type HoldReleasedEvent struct {
	HoldID        string `json:"hold_id"`
	ScheduleID    string `json:"schedule_id"`
	SeatsRestored int    `json:"seats_restored"`
	ReleasedAt    string `json:"released_at"`
}

// TicketIssuedEvent is published after ticket issuance commits, i.e.
// after the booking's holds were confirmed.
type TicketIssuedEvent struct {
	TicketID  string `json:"ticket_id"`
	BookingID string `json:"booking_id"`
	ContactID string `json:"contact_id"`
	IssuedAt  string `json:"issued_at"`
}
