package repository

import (
	"context"
	"database/sql"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
)

// TicketRepo provides data access to the tickets, contacts and
// passengers tables.  All writes happen inside the ticket issuance
// transaction owned by the caller, so a failed hold confirmation rolls
// back the contact and passenger rows along with the ticket itself.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateContactTx inserts the purchaser contact within the provided
// transaction.
func (r *TicketRepo) CreateContactTx(ctx context.Context, tx *sql.Tx, c *model.Contact) error {
	const q = `INSERT INTO contacts (id, full_name, email, phone, created_at)
               VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, c.ID, c.FullName, c.Email, c.Phone, c.CreatedAt.UTC())
	return err
}

// CreateTicketTx inserts the ticket row within the provided transaction.
func (r *TicketRepo) CreateTicketTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (id, booking_id, contact_id, created_at)
               VALUES (?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, t.ID, t.BookingID, t.ContactID, t.CreatedAt.UTC())
	return err
}

// CreatePassengersBulkTx inserts all passengers of a ticket in a single
// statement.  Passing an empty slice has no effect and returns nil.
func (r *TicketRepo) CreatePassengersBulkTx(ctx context.Context, tx *sql.Tx, passengers []model.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}
	query := `INSERT INTO passengers (id, ticket_id, full_name, document_number, nationality) VALUES `
	args := make([]interface{}, 0, len(passengers)*5)
	for i, p := range passengers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, p.ID, p.TicketID, p.FullName, p.DocumentNumber, p.Nationality)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// TicketDetail is a ticket joined with its contact, returned by GetDetail.
type TicketDetail struct {
	ID         string            `json:"id"`
	BookingID  string            `json:"booking_id"`
	Contact    model.Contact     `json:"contact"`
	Passengers []model.Passenger `json:"passengers"`
}

// GetDetail loads a ticket with its contact and passengers.  It returns
// ErrTicketNotFound when the ticket does not exist.
func (r *TicketRepo) GetDetail(ctx context.Context, id string) (*TicketDetail, error) {
	const q = `SELECT t.id, t.booking_id,
                      c.id, c.full_name, c.email, c.phone, c.created_at
               FROM tickets t
               JOIN contacts c ON c.id = t.contact_id
               WHERE t.id = ?`
	var det TicketDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.BookingID,
		&det.Contact.ID, &det.Contact.FullName, &det.Contact.Email, &det.Contact.Phone, &det.Contact.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	const pq = `SELECT id, ticket_id, full_name, document_number, nationality
                FROM passengers WHERE ticket_id = ? ORDER BY full_name`
	rows, err := r.db.QueryContext(ctx, pq, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Passengers = make([]model.Passenger, 0)
	for rows.Next() {
		var p model.Passenger
		if err := rows.Scan(&p.ID, &p.TicketID, &p.FullName, &p.DocumentNumber, &p.Nationality); err != nil {
			return nil, err
		}
		det.Passengers = append(det.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}
