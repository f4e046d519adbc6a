package model

// SeatStatus is the status carried by a push event on the live channel.
type SeatStatus string

const (
	StatusHeld     SeatStatus = "held"
	StatusReleased SeatStatus = "released"
	StatusBooked   SeatStatus = "booked"
)

// SeatEvent is one push notification about a single seat of one showtime.
// Origin carries the session id of the client whose action produced the
// event, so a session can recognise echoes of its own holds.  Events for
// different seats carry no ordering guarantee; applying each one must be
// independent and idempotent.
type SeatEvent struct {
	ShowtimeID uint64     `json:"showtime_id"`
	SeatID     SeatID     `json:"seat_id"`
	Status     SeatStatus `json:"status"`
	Origin     string     `json:"origin,omitempty"`
}
