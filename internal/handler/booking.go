package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/model"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/queue"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"
)

// BookingHandler exposes the checkout surface: creating a booking
// (one or two seat holds plus the pairing record, atomically) and
// reading it back while the customer completes contact, passenger and
// payment entry.
type BookingHandler struct {
	Reservations *service.ReservationService
	BookingRepo  *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(reservations *service.ReservationService, bookings *repository.BookingRepo) *BookingHandler {
	if reservations == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Reservations: reservations, BookingRepo: bookings}
}

// CreateBooking handles POST /v1/bookings.  The request body must
// contain an outbound schedule id and a positive passenger count; a
// return schedule id makes the booking a round trip whose two holds
// succeed or fail together.  Error mapping: unknown schedule → 404,
// schedule not bookable → 409, insufficient seats → 409 with the
// remaining count so the client can resubmit a smaller quantity.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		OutboundScheduleID string  `json:"outbound_schedule_id"`
		ReturnScheduleID   *string `json:"return_schedule_id"`
		TotalPassengers    int     `json:"total_passengers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := uuid.Parse(body.OutboundScheduleID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid outbound_schedule_id"})
	}
	if body.ReturnScheduleID != nil {
		if _, err := uuid.Parse(*body.ReturnScheduleID); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid return_schedule_id"})
		}
	}
	if body.TotalPassengers <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_passengers must be a positive integer"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.CreateBooking(ctx, service.BookingRequest{
		OutboundScheduleID: body.OutboundScheduleID,
		ReturnScheduleID:   body.ReturnScheduleID,
		Quantity:           body.TotalPassengers,
	})
	if err != nil {
		var insufficient *repository.InsufficientSeatsError
		switch {
		case errors.Is(err, repository.ErrScheduleNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		case errors.Is(err, repository.ErrScheduleNotBookable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "schedule is not accepting bookings"})
		case errors.As(err, &insufficient):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":           "not enough seats available",
				"schedule_id":     insufficient.ScheduleID,
				"available_seats": insufficient.Available,
				"requested":       insufficient.Requested,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	// Best effort: a broker outage must not fail the checkout.
	ev := queue.BookingCreatedEvent{
		BookingID:          res.BookingID,
		OutboundHoldID:     res.OutboundHoldID,
		ReturnHoldID:       res.ReturnHoldID,
		OutboundScheduleID: body.OutboundScheduleID,
		ReturnScheduleID:   body.ReturnScheduleID,
		Quantity:           body.TotalPassengers,
		ExpiresAt:          res.ExpiresAt.Format(time.RFC3339),
		CreatedAt:          time.Now().UTC().Format(time.RFC3339),
	}
	_ = service.PublishBookingCreated(ctx, ev)

	resp := echo.Map{
		"booking_id":       res.BookingID,
		"outbound_hold_id": res.OutboundHoldID,
		"expires_at":       res.ExpiresAt.Format(time.RFC3339),
	}
	if res.ReturnHoldID != nil {
		resp["return_hold_id"] = *res.ReturnHoldID
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /v1/bookings/:id.  It returns the pairing
// record with both legs joined to their schedules.  When the outbound
// hold has already expired, checkout can no longer proceed and the
// booking is reported as gone.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.BookingRepo.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) || errors.Is(err, repository.ErrHoldNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if det.Outbound.Status == model.SeatHoldExpired {
		return c.JSON(http.StatusGone, echo.Map{"error": "seat holds expired"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}
