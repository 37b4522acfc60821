// Package service contains the reservation engine's orchestration
// logic: composing one or two seat holds into an atomic booking and
// reversing holds whose checkout was abandoned.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
)

// ReservationService couples the schedule inventory store and the seat
// hold table behind the operations the HTTP layer and the expiration
// reaper need.  All multi-step mutations run inside a single database
// transaction; correctness under concurrency rests entirely on the
// storage layer's row locks and conditional updates, so the service
// itself carries no in-process synchronization and is safe to share
// across goroutines and server instances.
type ReservationService struct {
	db        *sql.DB
	schedules *repository.ScheduleRepo
	holds     *repository.SeatHoldRepo
	bookings  *repository.BookingRepo
	holdTTL   time.Duration
}

// NewReservationService constructs a ReservationService.  holdTTL is
// the fixed time a hold stays live before the reaper may release it.
func NewReservationService(db *sql.DB, schedules *repository.ScheduleRepo, holds *repository.SeatHoldRepo, bookings *repository.BookingRepo, holdTTL time.Duration) *ReservationService {
	if db == nil || schedules == nil || holds == nil || bookings == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{
		db:        db,
		schedules: schedules,
		holds:     holds,
		bookings:  bookings,
		holdTTL:   holdTTL,
	}
}

// BookingRequest describes one checkout attempt: an outbound schedule,
// the passenger count, and an optional return schedule for round trips.
// Quantity must be validated as a positive integer before the request
// reaches CreateBooking.
type BookingRequest struct {
	OutboundScheduleID string
	ReturnScheduleID   *string
	Quantity           int
}

// BookingResult is returned to the checkout flow on success.
type BookingResult struct {
	BookingID      string
	OutboundHoldID string
	ReturnHoldID   *string
	ExpiresAt      time.Time
}

// CreateBooking reserves seats for a checkout attempt as one atomic
// unit.  It opens a single transaction, creates the outbound hold, the
// return hold when requested, and the pairing record, then commits.
// Both holds share one expiry instant computed before the first hold is
// admitted.  Any failure rolls back every effect — there is no state in
// which an outbound hold exists without its pairing record or without
// the requested return hold — and the originating error kind
// (ErrScheduleNotFound, ErrScheduleNotBookable, ErrInsufficientSeats)
// is propagated unchanged.
func (s *ReservationService) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.holdTTL)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	outbound, err := s.createHoldTx(ctx, tx, req.OutboundScheduleID, req.Quantity, now, expiresAt)
	if err != nil {
		return nil, err
	}

	var returnHold *model.SeatHold
	if req.ReturnScheduleID != nil {
		returnHold, err = s.createHoldTx(ctx, tx, *req.ReturnScheduleID, req.Quantity, now, expiresAt)
		if err != nil {
			return nil, err
		}
	}

	booking := &model.Booking{
		ID:             uuid.NewString(),
		OutboundHoldID: outbound.ID,
		CreatedAt:      now,
	}
	if returnHold != nil {
		id := returnHold.ID
		booking.ReturnHoldID = &id
	}
	if err := s.bookings.CreateTx(ctx, tx, booking); err != nil {
		return nil, fmt.Errorf("create booking record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}
	committed = true

	res := &BookingResult{
		BookingID:      booking.ID,
		OutboundHoldID: outbound.ID,
		ExpiresAt:      expiresAt,
	}
	if returnHold != nil {
		id := returnHold.ID
		res.ReturnHoldID = &id
	}
	return res, nil
}

// createHoldTx admits one hold against one schedule inside the ambient
// transaction.  The schedule row is read under an exclusive lock, so
// every step from the availability check to the seat decrement executes
// while concurrent bookings for the same schedule are blocked; no other
// transaction can observe the counter in between.
func (s *ReservationService) createHoldTx(ctx context.Context, tx *sql.Tx, scheduleID string, quantity int, now, expiresAt time.Time) (*model.SeatHold, error) {
	inv, err := s.schedules.LockInventoryTx(ctx, tx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.Bookable() {
		return nil, fmt.Errorf("schedule %s has status %q: %w", scheduleID, inv.Status, repository.ErrScheduleNotBookable)
	}
	if inv.AvailableSeats < quantity {
		return nil, &repository.InsufficientSeatsError{
			ScheduleID: scheduleID,
			Available:  inv.AvailableSeats,
			Requested:  quantity,
		}
	}

	hold := &model.SeatHold{
		ID:         uuid.NewString(),
		ScheduleID: scheduleID,
		Quantity:   quantity,
		Status:     model.SeatHoldHeld,
		HeldAt:     now,
		ExpiresAt:  expiresAt,
	}
	if err := s.holds.InsertTx(ctx, tx, hold); err != nil {
		return nil, fmt.Errorf("insert seat hold: %w", err)
	}
	if err := s.schedules.AddAvailableSeatsTx(ctx, tx, scheduleID, -quantity); err != nil {
		return nil, fmt.Errorf("decrement available seats: %w", err)
	}
	return hold, nil
}

// ReleaseHold reverses a hold's inventory effect in its own transaction
// (the explicit cancellation path: no deadline predicate).  It returns
// false when the hold had already been confirmed or expired — no
// inventory change is made in that case — and ErrHoldNotFound when the
// hold does not exist at all.
func (s *ReservationService) ReleaseHold(ctx context.Context, holdID string) (bool, error) {
	released, _, err := s.release(ctx, holdID, false)
	return released, err
}

// ReleaseExpiredHold is the reaper's release path: the conditional
// update additionally requires the hold's deadline to have passed, so
// redundant reaper instances and a late confirmation race safely.  On
// success it reports the number of seats restored to the schedule.
func (s *ReservationService) ReleaseExpiredHold(ctx context.Context, holdID string) (bool, int, error) {
	return s.release(ctx, holdID, true)
}

func (s *ReservationService) release(ctx context.Context, holdID string, onlyPastDeadline bool) (bool, int, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin release transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	won, err := s.holds.MarkExpiredTx(ctx, tx, holdID, now, onlyPastDeadline)
	if err != nil {
		return false, 0, fmt.Errorf("mark hold expired: %w", err)
	}
	if !won {
		// Lost the compare-and-set: confirmed, already expired, not yet
		// past its deadline, or missing.  Distinguish the missing case
		// for callers; never touch inventory here.
		if _, err := s.holds.GetTx(ctx, tx, holdID); err != nil {
			return false, 0, err
		}
		return false, 0, nil
	}

	hold, err := s.holds.GetTx(ctx, tx, holdID)
	if err != nil {
		return false, 0, err
	}
	if err := s.schedules.AddAvailableSeatsTx(ctx, tx, hold.ScheduleID, hold.Quantity); err != nil {
		return false, 0, fmt.Errorf("restore available seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit release transaction: %w", err)
	}
	committed = true
	return true, hold.Quantity, nil
}

// ExpiredHolds lists the holds the reaper should attempt to release on
// this sweep: still held, deadline in the past.
func (s *ReservationService) ExpiredHolds(ctx context.Context) ([]model.SeatHold, error) {
	return s.holds.FindExpired(ctx, time.Now().UTC())
}

// GetHold exposes a single hold for read endpoints.
func (s *ReservationService) GetHold(ctx context.Context, holdID string) (*model.SeatHold, error) {
	return s.holds.GetByID(ctx, holdID)
}
