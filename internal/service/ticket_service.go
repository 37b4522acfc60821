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

// TicketService issues travel documents against a booking.  Issuing a
// ticket is the confirmation hook of the reservation engine: inside one
// transaction it moves the booking's holds out of the releasable set
// (held→confirmed) and persists the ticket, contact and passengers.
// If any hold was already released by the expiration reaper the whole
// transaction rolls back and ErrHoldAlreadyReleased is surfaced, so no
// partial ticket ever exists against freed inventory.
type TicketService struct {
	db       *sql.DB
	tickets  *repository.TicketRepo
	holds    *repository.SeatHoldRepo
	bookings *repository.BookingRepo
}

// NewTicketService constructs a TicketService.
func NewTicketService(db *sql.DB, tickets *repository.TicketRepo, holds *repository.SeatHoldRepo, bookings *repository.BookingRepo) *TicketService {
	if db == nil || tickets == nil || holds == nil || bookings == nil {
		panic("nil dependency passed to NewTicketService")
	}
	return &TicketService{db: db, tickets: tickets, holds: holds, bookings: bookings}
}

// ContactInput is the purchaser contact collected during checkout.
type ContactInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// PassengerInput is one traveller listed on the ticket.
type PassengerInput struct {
	FullName       string `json:"full_name"`
	DocumentNumber string `json:"document_number"`
	Nationality    string `json:"nationality"`
}

// IssueTicketRequest asks for a ticket against an existing booking.
type IssueTicketRequest struct {
	BookingID  string
	Contact    ContactInput
	Passengers []PassengerInput
}

// IssueTicketResult identifies the created records.
type IssueTicketResult struct {
	TicketID  string
	ContactID string
}

// IssueTicket creates the contact, confirms the booking's holds and
// persists the ticket with its passengers, all in one transaction.
// Error kinds: ErrBookingNotFound when the booking does not exist,
// ErrHoldAlreadyReleased when any hold expired before confirmation
// (the customer must restart checkout), ErrHoldNotFound if a hold row
// is missing.
func (s *TicketService) IssueTicket(ctx context.Context, req IssueTicketRequest) (*IssueTicketResult, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ticket transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := s.bookings.GetTx(ctx, tx, req.BookingID)
	if err != nil {
		return nil, err
	}

	// Confirm before writing anything: a lost hold aborts the whole
	// issuance and the rollback leaves no trace.
	if err := s.holds.ConfirmTx(ctx, tx, booking.OutboundHoldID); err != nil {
		return nil, err
	}
	if booking.ReturnHoldID != nil {
		if err := s.holds.ConfirmTx(ctx, tx, *booking.ReturnHoldID); err != nil {
			return nil, err
		}
	}

	contact := &model.Contact{
		ID:        uuid.NewString(),
		FullName:  req.Contact.FullName,
		Email:     req.Contact.Email,
		Phone:     req.Contact.Phone,
		CreatedAt: now,
	}
	if err := s.tickets.CreateContactTx(ctx, tx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	ticket := &model.Ticket{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		ContactID: contact.ID,
		CreatedAt: now,
	}
	if err := s.tickets.CreateTicketTx(ctx, tx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	passengers := make([]model.Passenger, 0, len(req.Passengers))
	for _, p := range req.Passengers {
		passengers = append(passengers, model.Passenger{
			ID:             uuid.NewString(),
			TicketID:       ticket.ID,
			FullName:       p.FullName,
			DocumentNumber: p.DocumentNumber,
			Nationality:    p.Nationality,
		})
	}
	if err := s.tickets.CreatePassengersBulkTx(ctx, tx, passengers); err != nil {
		return nil, fmt.Errorf("create passengers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ticket transaction: %w", err)
	}
	committed = true

	return &IssueTicketResult{TicketID: ticket.ID, ContactID: contact.ID}, nil
}
