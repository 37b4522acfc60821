package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/handler" // handlers implementing the endpoints
)

// RegisterRoutes registers infrastructure routes on the provided Echo
// instance.  Currently that is just the health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring probe this endpoint to verify the
	// service is up.
	e.GET("/healthz", handler.Health)
	e.GET("/v1/health", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.  The
// schedule search sits behind the Redis response cache: availability
// counts shown here may lag the live inventory by the cache TTL, which
// is fine because hold admission re-checks under a row lock.
func RegisterPublic(e *echo.Echo, s *handler.ScheduleHandler, cache echo.MiddlewareFunc) {
	// Search departures by date and port pair.
	e.GET("/v1/schedules", s.SearchSchedules, cache)
}

// RegisterReservation registers the checkout flow: booking creation
// (rate limited, because each request takes a schedule row lock),
// booking and hold inspection, explicit hold release and ticket
// issuance.
func RegisterReservation(e *echo.Echo, b *handler.BookingHandler, h *handler.HoldHandler, t *handler.TicketHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")

	// Create a booking: admits one or two seat holds atomically and
	// starts the hold countdown.
	g.POST("/bookings", b.CreateBooking, limit)
	// Inspect a booking with both legs; 410 once its holds expired.
	g.GET("/bookings/:id", b.GetBooking)

	// Inspect a single seat hold.
	g.GET("/holds/:id", h.GetHold)
	// Release a hold ahead of its deadline (customer abandoned checkout).
	g.DELETE("/holds/:id", h.ReleaseHold)

	// Confirm a booking's holds and issue the ticket.
	g.POST("/tickets", t.IssueTicket)
	// Fetch an issued ticket with contact and passengers.
	g.GET("/tickets/:id", t.GetTicket)
}
