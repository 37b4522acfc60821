package model

import "time"

// Contact holds the purchaser details collected during checkout.
type Contact struct {
	ID        string    // contacts.id
	FullName  string    // contacts.full_name
	Email     string    // contacts.email
	Phone     string    // contacts.phone
	CreatedAt time.Time // contacts.created_at
}

// Passenger is one traveller listed on a ticket.  Seat numbers are not
// assigned to individual passengers; a ticket covers as many seats as
// its holds claimed.
type Passenger struct {
	ID             string // passengers.id
	TicketID       string // passengers.ticket_id
	FullName       string // passengers.full_name
	DocumentNumber string // passengers.document_number
	Nationality    string // passengers.nationality
}

// Ticket is the issued travel document for a booking.  Issuing a
// ticket confirms the booking's holds; a ticket is never persisted
// against holds that have already expired.
type Ticket struct {
	ID        string    // tickets.id
	BookingID string    // tickets.booking_id
	ContactID string    // tickets.contact_id
	CreatedAt time.Time // tickets.created_at
}
