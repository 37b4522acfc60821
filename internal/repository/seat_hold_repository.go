package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
)

// SeatHoldRepo provides data access to the seat_holds table.  A hold's
// status column is contended between two independent actors — the
// expiration reaper and ticket issuance — so every transition out of
// the held state is a conditional update (compare-and-set), never a
// read-then-write.  A lost conditional update is reported through the
// affected-row count and is safe to ignore.  All timestamps are UTC.
type SeatHoldRepo struct {
	db *sql.DB
}

// NewSeatHoldRepo returns a new SeatHoldRepo bound to the provided database.
func NewSeatHoldRepo(db *sql.DB) *SeatHoldRepo { return &SeatHoldRepo{db: db} }

// InsertTx inserts a seat hold within the provided transaction.  The
// caller supplies the ID, quantity and timestamps and owns the
// transaction; InsertTx performs no inventory change on its own.
func (r *SeatHoldRepo) InsertTx(ctx context.Context, tx *sql.Tx, h *model.SeatHold) error {
	const q = `INSERT INTO seat_holds (id, schedule_id, quantity, status, held_at, expires_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		h.ID, h.ScheduleID, h.Quantity, h.Status, h.HeldAt.UTC(), h.ExpiresAt.UTC(),
	)
	return err
}

// GetByID retrieves a seat hold by its ID.  It returns ErrHoldNotFound
// if there is no matching row.
func (r *SeatHoldRepo) GetByID(ctx context.Context, id string) (*model.SeatHold, error) {
	return scanHold(r.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, quantity, status, held_at, expires_at, released_at
         FROM seat_holds WHERE id = ?`, id))
}

// GetTx is GetByID within the caller's transaction.
func (r *SeatHoldRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.SeatHold, error) {
	return scanHold(tx.QueryRowContext(ctx,
		`SELECT id, schedule_id, quantity, status, held_at, expires_at, released_at
         FROM seat_holds WHERE id = ?`, id))
}

func scanHold(row *sql.Row) (*model.SeatHold, error) {
	var h model.SeatHold
	var released sql.NullTime
	err := row.Scan(&h.ID, &h.ScheduleID, &h.Quantity, &h.Status, &h.HeldAt, &h.ExpiresAt, &released)
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, err
	}
	if released.Valid {
		t := released.Time
		h.ReleasedAt = &t
	}
	return &h, nil
}

// MarkExpiredTx performs the conditional transition held→expired within
// the caller's transaction and reports whether this call won the
// transition.  When onlyPastDeadline is true (the reaper path) the
// update additionally requires expires_at < now, so a hold whose
// deadline has not passed is left untouched.  A false return with a nil
// error means the hold was already confirmed or already expired by a
// concurrent caller — or does not exist — and no inventory change must
// follow.
func (r *SeatHoldRepo) MarkExpiredTx(ctx context.Context, tx *sql.Tx, holdID string, now time.Time, onlyPastDeadline bool) (bool, error) {
	q := `UPDATE seat_holds SET status = ?, released_at = ? WHERE id = ? AND status = ?`
	args := []interface{}{model.SeatHoldExpired, now.UTC(), holdID, model.SeatHoldHeld}
	if onlyPastDeadline {
		q += ` AND expires_at < ?`
		args = append(args, now.UTC())
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ConfirmTx performs the conditional transition held→confirmed within
// the caller's transaction.  When the conditional update affects no
// rows the hold is re-read to distinguish a missing hold
// (ErrHoldNotFound) from one that already left the held state
// (ErrHoldAlreadyReleased); a hold that the reaper expired first must
// surface as a hard failure so no ticket is fabricated against freed
// inventory.
func (r *SeatHoldRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, holdID string) error {
	const q = `UPDATE seat_holds SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.SeatHoldConfirmed, holdID, model.SeatHoldHeld)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	h, err := r.GetTx(ctx, tx, holdID)
	if err != nil {
		return err
	}
	if h.Status == model.SeatHoldConfirmed {
		// A concurrent confirmation won; treat as success so retried
		// issuance stays idempotent.
		return nil
	}
	return ErrHoldAlreadyReleased
}

// FindExpired returns all holds whose deadline has passed while still
// in the held state.  The query deliberately runs outside any single
// hold's transaction: each returned hold is subsequently released in
// its own transaction, and the conditional update there closes the race
// against concurrent confirmation or a second reaper instance.
func (r *SeatHoldRepo) FindExpired(ctx context.Context, now time.Time) ([]model.SeatHold, error) {
	const q = `SELECT id, schedule_id, quantity, status, held_at, expires_at, released_at
               FROM seat_holds
               WHERE status = ? AND expires_at < ?`
	rows, err := r.db.QueryContext(ctx, q, model.SeatHoldHeld, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []model.SeatHold
	for rows.Next() {
		var h model.SeatHold
		var released sql.NullTime
		if err := rows.Scan(&h.ID, &h.ScheduleID, &h.Quantity, &h.Status, &h.HeldAt, &h.ExpiresAt, &released); err != nil {
			return nil, err
		}
		if released.Valid {
			t := released.Time
			h.ReleasedAt = &t
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}
