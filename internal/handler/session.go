// Package handler exposes the seat-selection session to the rest of the
// application over the local HTTP gateway: the render-ready seat list with
// per-cell status, the selection totals for the summary bar, the ticket
// quota, the countdown, and the toggle/showtime actions.  The backend that
// owns the authoritative hold state is never reached from here directly –
// every route goes through the session actor.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-sync-client/internal/model"
	"github.com/iliyamo/seat-sync-client/internal/session"
)

// SessionHandler binds the routes to one user's session.
type SessionHandler struct {
	Session *session.Session
}

// NewSessionHandler constructs a handler.  The session must be non-nil.
func NewSessionHandler(s *session.Session) *SessionHandler {
	if s == nil {
		panic("nil session passed to NewSessionHandler")
	}
	return &SessionHandler{Session: s}
}

// GetState handles GET /v1/session/state.  While the snapshot load has
// failed the seat map is blocked: operating on unknown seat state risks
// double-booking, so the route answers 503 until a reselect succeeds.
func (h *SessionHandler) GetState(c echo.Context) error {
	v, err := h.Session.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	if v.Blocked {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":     "seat snapshot unavailable",
			"retryable": true,
		})
	}
	return c.JSON(http.StatusOK, v)
}

// SelectShowtime handles POST /v1/session/showtime.  The body must carry a
// positive showtime_id.  Selecting a showtime again retries a failed
// snapshot load.
func (h *SessionHandler) SelectShowtime(c echo.Context) error {
	var body struct {
		ShowtimeID uint64 `json:"showtime_id"`
	}
	if err := c.Bind(&body); err != nil || body.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime_id"})
	}
	if err := h.Session.SelectShowtime(c.Request().Context(), body.ShowtimeID); err != nil {
		if errors.Is(err, session.ErrSnapshotLoad) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"error":     "seat snapshot unavailable",
				"retryable": true,
			})
		}
		if errors.Is(err, session.ErrShowtimeChanged) {
			// a newer selection overtook this one; nothing to report
			return c.JSON(http.StatusOK, echo.Map{"superseded": true})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to select showtime"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": body.ShowtimeID})
}

// ToggleSeat handles POST /v1/session/seats/toggle.  The body carries the
// seat_id of the cell's primary (or partner) seat; paired cells toggle
// both halves atomically.  Error bodies carry the user-facing message the
// page shows as a toast.
func (h *SessionHandler) ToggleSeat(c echo.Context) error {
	var body struct {
		SeatID string `json:"seat_id"`
	}
	if err := c.Bind(&body); err != nil || body.SeatID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id is required"})
	}
	err := h.Session.ToggleSeat(c.Request().Context(), model.SeatID(body.SeatID))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"seat_id": body.SeatID})
	case errors.Is(err, session.ErrQuotaExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket quota exceeded for this seat type"})
	case errors.Is(err, session.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "this seat can no longer be selected"})
	case errors.Is(err, session.ErrToggleInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat update still in progress"})
	case errors.Is(err, session.ErrNotSelectable), errors.Is(err, session.ErrNoShowtime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is not selectable"})
	case errors.Is(err, session.ErrSnapshotLoad):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "seat snapshot unavailable", "retryable": true})
	case errors.Is(err, session.ErrShowtimeChanged):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime changed"})
	default:
		// transient network failure; the user may simply click again
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "couldn't select this seat"})
	}
}

// SetTickets handles PUT /v1/session/tickets, adjusting the purchased
// quantity for one seat category.  Lowering the quota below the seats
// already chosen for that category is rejected.
func (h *SessionHandler) SetTickets(c echo.Context) error {
	var body struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	if err := c.Bind(&body); err != nil || body.Category == "" || body.Count < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket request"})
	}
	err := h.Session.SetTicketQuota(c.Request().Context(), model.SeatCategory(body.Category), body.Count)
	if err != nil {
		if errors.Is(err, session.ErrQuotaExceeded) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "deselect seats before lowering the ticket count"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"category": body.Category, "count": body.Count})
}

// GetCountdown handles GET /v1/session/countdown, a cheap poll target for
// the countdown badge so the page does not have to pull the full state.
func (h *SessionHandler) GetCountdown(c echo.Context) error {
	v, err := h.Session.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"remaining_seconds": v.RemainingSeconds})
}
