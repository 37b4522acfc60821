package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/service"
)

// HoldHandler exposes read and explicit-release access to individual
// seat holds.
type HoldHandler struct {
	Reservations *service.ReservationService
}

// NewHoldHandler constructs a HoldHandler.
func NewHoldHandler(reservations *service.ReservationService) *HoldHandler {
	if reservations == nil {
		panic("nil service passed to NewHoldHandler")
	}
	return &HoldHandler{Reservations: reservations}
}

// GetHold handles GET /v1/holds/:id.
func (h *HoldHandler) GetHold(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	hold, err := h.Reservations.GetHold(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHoldNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch hold"})
	}
	resp := echo.Map{
		"id":          hold.ID,
		"schedule_id": hold.ScheduleID,
		"quantity":    hold.Quantity,
		"status":      hold.Status,
		"held_at":     hold.HeldAt.Format(time.RFC3339),
		"expires_at":  hold.ExpiresAt.Format(time.RFC3339),
	}
	if hold.ReleasedAt != nil {
		resp["released_at"] = hold.ReleasedAt.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// ReleaseHold handles DELETE /v1/holds/:id — the explicit cancellation
// flow for an abandoned checkout.  released=false means the hold had
// already been confirmed or expired; the seats were returned at most
// once either way.
func (h *HoldHandler) ReleaseHold(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	released, err := h.Reservations.ReleaseHold(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHoldNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release hold"})
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}
