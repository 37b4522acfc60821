package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/queue"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"
)

// TicketHandler exposes ticket issuance — the flow that confirms a
// booking's seat holds — and ticket lookup.
type TicketHandler struct {
	Tickets    *service.TicketService
	TicketRepo *repository.TicketRepo
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(tickets *service.TicketService, repo *repository.TicketRepo) *TicketHandler {
	if tickets == nil || repo == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets, TicketRepo: repo}
}

// IssueTicket handles POST /v1/tickets.  The body carries the booking
// id, the purchaser contact and the passenger list.  A hold that
// expired before confirmation aborts the whole issuance with 409; the
// customer must restart checkout because the seats have returned to
// inventory.
func (h *TicketHandler) IssueTicket(c echo.Context) error {
	var body struct {
		BookingID  string                   `json:"booking_id"`
		Contact    service.ContactInput     `json:"contact"`
		Passengers []service.PassengerInput `json:"passengers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := uuid.Parse(body.BookingID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking_id"})
	}
	if body.Contact.FullName == "" || body.Contact.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact full_name and email are required"})
	}
	if len(body.Passengers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one passenger is required"})
	}

	ctx := c.Request().Context()
	res, err := h.Tickets.IssueTicket(ctx, service.IssueTicketRequest{
		BookingID:  body.BookingID,
		Contact:    body.Contact,
		Passengers: body.Passengers,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrHoldAlreadyReleased):
			return c.JSON(http.StatusConflict, echo.Map{"error": "your held seats expired; please start a new booking"})
		case errors.Is(err, repository.ErrHoldNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat hold not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue ticket"})
	}

	_ = service.PublishTicketIssued(ctx, queue.TicketIssuedEvent{
		TicketID:  res.TicketID,
		BookingID: body.BookingID,
		ContactID: res.ContactID,
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"ticket_id":  res.TicketID,
		"contact_id": res.ContactID,
	})
}

// GetTicket handles GET /v1/tickets/:id.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	det, err := h.TicketRepo.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}
