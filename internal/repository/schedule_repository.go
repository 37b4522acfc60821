package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
)

// ScheduleRepo provides data access to the schedules table.  The seat
// counter on a schedule row is the engine's single piece of shared
// mutable state: every mutation happens through LockInventoryTx plus
// AddAvailableSeatsTx inside one transaction, so concurrent bookings
// against the same schedule serialize on the row lock while bookings
// against different schedules proceed unimpeded.  All timestamps are
// stored and compared in UTC.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the provided database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ScheduleRepo) DB() *sql.DB { return r.db }

// ScheduleInventory is the snapshot read under the exclusive row lock.
// It carries exactly what a hold admission decision needs.
type ScheduleInventory struct {
	ID             string
	AvailableSeats int
	TotalCapacity  int
	Status         model.ScheduleStatus
}

// LockInventoryTx reads a schedule's seat counters under SELECT ... FOR
// UPDATE.  It must be called inside an active transaction; the
// exclusive row lock is held until the transaction ends, blocking
// concurrent lockers of the same schedule.  Returns ErrScheduleNotFound
// when no row exists.
func (r *ScheduleRepo) LockInventoryTx(ctx context.Context, tx *sql.Tx, scheduleID string) (*ScheduleInventory, error) {
	const q = `SELECT id, available_seats, total_capacity, status
               FROM schedules
               WHERE id = ?
               FOR UPDATE`
	var inv ScheduleInventory
	err := tx.QueryRowContext(ctx, q, scheduleID).Scan(
		&inv.ID, &inv.AvailableSeats, &inv.TotalCapacity, &inv.Status,
	)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AddAvailableSeatsTx applies a signed delta to a schedule's
// available_seats within the caller's transaction.  Pass a negative
// delta when admitting a hold and a positive delta when releasing one.
// The caller must already hold (or implicitly acquire through this
// UPDATE) the schedule's row lock.
func (r *ScheduleRepo) AddAvailableSeatsTx(ctx context.Context, tx *sql.Tx, scheduleID string, delta int) error {
	const q = `UPDATE schedules SET available_seats = available_seats + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, delta, scheduleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// GetByID retrieves a schedule by its ID.  It returns
// ErrScheduleNotFound if there is no matching row.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	const q = `SELECT id, route_id, ferry_id, departure_time, arrival_time,
                      total_capacity, available_seats, status, created_at, updated_at
               FROM schedules WHERE id = ?`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.RouteID, &s.FerryID, &s.DepartureTime, &s.ArrivalTime,
		&s.TotalCapacity, &s.AvailableSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ScheduleFilter restricts a schedule search.  Zero values mean "no
// filter".  DepartureDate matches the whole UTC day; FromPortID and
// ToPortID match the route's origin and destination ports.
type ScheduleFilter struct {
	DepartureDate time.Time
	FromPortID    string
	ToPortID      string
}

// ScheduleSummary is the public search result row: the schedule's
// timing and remaining seats together with the ferry and route fields
// the storefront displays.
type ScheduleSummary struct {
	ID             string               `json:"id"`
	DepartureTime  time.Time            `json:"departure_time"`
	ArrivalTime    time.Time            `json:"arrival_time"`
	AvailableSeats int                  `json:"available_seats"`
	Status         model.ScheduleStatus `json:"status"`
	FerryName      string               `json:"ferry_name"`
	FerryType      string               `json:"ferry_type"`
	Amenities      *string              `json:"amenities,omitempty"`
	BasePriceCents uint32               `json:"base_price_cents"`
}

// Search returns schedules matching the filter, joined with ferry and
// route display data.  Results are ordered by departure time ascending.
// When no schedules match, an empty slice is returned.
func (r *ScheduleRepo) Search(ctx context.Context, f ScheduleFilter) ([]ScheduleSummary, error) {
	q := `SELECT s.id, s.departure_time, s.arrival_time, s.available_seats, s.status,
                 f.name, f.type, f.amenities, rt.base_price_cents
          FROM schedules s
          JOIN ferries f ON f.id = s.ferry_id
          JOIN routes rt ON rt.id = s.route_id`
	var conds []string
	var args []interface{}
	if !f.DepartureDate.IsZero() {
		day := f.DepartureDate.UTC().Truncate(24 * time.Hour)
		conds = append(conds, "s.departure_time >= ? AND s.departure_time < ?")
		args = append(args, day, day.Add(24*time.Hour))
	}
	if f.FromPortID != "" {
		conds = append(conds, "rt.origin_port_id = ?")
		args = append(args, f.FromPortID)
	}
	if f.ToPortID != "" {
		conds = append(conds, "rt.destination_port_id = ?")
		args = append(args, f.ToPortID)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY s.departure_time ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]ScheduleSummary, 0)
	for rows.Next() {
		var s ScheduleSummary
		var amenities sql.NullString
		if err := rows.Scan(
			&s.ID, &s.DepartureTime, &s.ArrivalTime, &s.AvailableSeats, &s.Status,
			&s.FerryName, &s.FerryType, &amenities, &s.BasePriceCents,
		); err != nil {
			return nil, err
		}
		if amenities.Valid {
			a := amenities.String
			s.Amenities = &a
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
