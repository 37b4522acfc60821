package model

import "time"

// ScheduleStatus enumerates the lifecycle states of a scheduled
// departure.  Only schedules in the "scheduled" state accept new
// seat holds; the remaining states are managed by catalog
// operations and never touch seat inventory.
type ScheduleStatus string

const (
	ScheduleScheduled ScheduleStatus = "scheduled"
	ScheduleBoarding  ScheduleStatus = "boarding"
	ScheduleDeparted  ScheduleStatus = "departed"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// Bookable reports whether new seat holds may be created against a
// schedule in this state.
func (s ScheduleStatus) Bookable() bool { return s == ScheduleScheduled }

// Schedule represents a single departure of a ferry on a route.
// TotalCapacity is fixed at creation; AvailableSeats is mutated
// exclusively by the reservation engine (decrement on hold creation,
// increment on release) and always satisfies
// 0 <= AvailableSeats <= TotalCapacity.
//
// Fields:
//  ID             – primary key identifier (UUID).
//  RouteID        – route served by this departure.
//  FerryID        – vessel assigned to this departure.
//  DepartureTime  – scheduled departure timestamp (UTC).
//  ArrivalTime    – scheduled arrival timestamp (UTC).
//  TotalCapacity  – number of sellable seats, fixed at creation.
//  AvailableSeats – seats not currently claimed by a live hold.
//  Status         – see ScheduleStatus.
type Schedule struct {
	ID             string         // schedules.id
	RouteID        string         // schedules.route_id
	FerryID        string         // schedules.ferry_id
	DepartureTime  time.Time      // schedules.departure_time
	ArrivalTime    time.Time      // schedules.arrival_time
	TotalCapacity  int            // schedules.total_capacity
	AvailableSeats int            // schedules.available_seats
	Status         ScheduleStatus // schedules.status
	CreatedAt      time.Time      // schedules.created_at
	UpdatedAt      time.Time      // schedules.updated_at
}
