package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/repository"
)

// ScheduleHandler serves the public departure search used by the
// storefront before checkout starts.
type ScheduleHandler struct {
	ScheduleRepo *repository.ScheduleRepo
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(repo *repository.ScheduleRepo) *ScheduleHandler {
	if repo == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	return &ScheduleHandler{ScheduleRepo: repo}
}

// SearchSchedules handles GET /v1/schedules.  All filters are
// optional: departure_date (YYYY-MM-DD, interpreted as a UTC day),
// from (origin port id) and to (destination port id).
func (h *ScheduleHandler) SearchSchedules(c echo.Context) error {
	var f repository.ScheduleFilter

	if d := strings.TrimSpace(c.QueryParam("departure_date")); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "departure_date must be YYYY-MM-DD"})
		}
		f.DepartureDate = day
	}
	f.FromPortID = strings.TrimSpace(c.QueryParam("from"))
	f.ToPortID = strings.TrimSpace(c.QueryParam("to"))

	items, err := h.ScheduleRepo.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search schedules"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": len(items),
	})
}
