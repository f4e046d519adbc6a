package router // package router defines how HTTP routes are registered for the gateway

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/iliyamo/seat-sync-client/internal/handler" // handlers implementing the gateway surface
)

// RegisterRoutes registers the gateway's routes on the provided Echo
// instance.  The gateway is a local, same-origin surface for the booking
// page; authentication and authorization are enforced by the backend the
// session talks to, so no auth middleware is applied here.
func RegisterRoutes(e *echo.Echo, s *handler.SessionHandler) {
	// health check for supervisors and local tooling
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/session")
	// full read model: seat map with per-cell state, totals, quota, countdown
	g.GET("/state", s.GetState)
	// switch (or retry) the active showtime; reseeds the whole session
	g.POST("/showtime", s.SelectShowtime)
	// toggle one seat cell in or out of the selection
	g.POST("/seats/toggle", s.ToggleSeat)
	// adjust the purchased ticket quantity for one category
	g.PUT("/tickets", s.SetTickets)
	// cheap poll target for the countdown badge
	g.GET("/countdown", s.GetCountdown)
}
