package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
)

// BookingRepo provides data access to the bookings table.  A booking
// row is write-once: it is inserted in the same transaction that
// created its holds and never updated afterwards.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts the pairing record within the provided transaction.
// The caller owns the transaction and must have created the referenced
// holds inside it.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, outbound_hold_id, return_hold_id, created_at)
               VALUES (?, ?, ?, ?)`
	var ret interface{}
	if b.ReturnHoldID != nil {
		ret = *b.ReturnHoldID
	}
	_, err := tx.ExecContext(ctx, q, b.ID, b.OutboundHoldID, ret, b.CreatedAt.UTC())
	return err
}

// GetByID retrieves the bare pairing record.  It returns
// ErrBookingNotFound if there is no matching row.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, outbound_hold_id, return_hold_id, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	var ret sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.OutboundHoldID, &ret, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if ret.Valid {
		s := ret.String
		b.ReturnHoldID = &s
	}
	return &b, nil
}

// GetTx is GetByID within the caller's transaction.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	const q = `SELECT id, outbound_hold_id, return_hold_id, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	var ret sql.NullString
	err := tx.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.OutboundHoldID, &ret, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if ret.Valid {
		s := ret.String
		b.ReturnHoldID = &s
	}
	return &b, nil
}

// HoldLeg describes one leg of a booking for display: the hold itself
// plus the schedule and ferry fields the checkout page shows while the
// customer completes contact and passenger entry.
type HoldLeg struct {
	HoldID         string               `json:"hold_id"`
	Status         model.SeatHoldStatus `json:"status"`
	Quantity       int                  `json:"quantity"`
	ExpiresAt      time.Time            `json:"expires_at"`
	ScheduleID     string               `json:"schedule_id"`
	DepartureTime  time.Time            `json:"departure_time"`
	ArrivalTime    time.Time            `json:"arrival_time"`
	FerryName      string               `json:"ferry_name"`
	BasePriceCents uint32               `json:"base_price_cents"`
}

// BookingDetail is the pairing record joined with both legs.
type BookingDetail struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Outbound  HoldLeg   `json:"outbound"`
	Return    *HoldLeg  `json:"return,omitempty"`
}

// GetDetail loads a booking together with its outbound and optional
// return legs.  It returns ErrBookingNotFound when the booking does not
// exist.  Callers decide how to surface legs whose holds have expired.
func (r *BookingRepo) GetDetail(ctx context.Context, id string) (*BookingDetail, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	det := &BookingDetail{ID: b.ID, CreatedAt: b.CreatedAt}

	out, err := r.loadLeg(ctx, b.OutboundHoldID)
	if err != nil {
		return nil, err
	}
	det.Outbound = *out

	if b.ReturnHoldID != nil {
		ret, err := r.loadLeg(ctx, *b.ReturnHoldID)
		if err != nil {
			return nil, err
		}
		det.Return = ret
	}
	return det, nil
}

func (r *BookingRepo) loadLeg(ctx context.Context, holdID string) (*HoldLeg, error) {
	const q = `SELECT h.id, h.status, h.quantity, h.expires_at,
                      s.id, s.departure_time, s.arrival_time,
                      f.name, rt.base_price_cents
               FROM seat_holds h
               JOIN schedules s ON s.id = h.schedule_id
               JOIN ferries f ON f.id = s.ferry_id
               JOIN routes rt ON rt.id = s.route_id
               WHERE h.id = ?`
	var leg HoldLeg
	err := r.db.QueryRowContext(ctx, q, holdID).Scan(
		&leg.HoldID, &leg.Status, &leg.Quantity, &leg.ExpiresAt,
		&leg.ScheduleID, &leg.DepartureTime, &leg.ArrivalTime,
		&leg.FerryName, &leg.BasePriceCents,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, err
	}
	return &leg, nil
}
