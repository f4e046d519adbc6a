// Package backend implements the REST client for the booking backend that
// owns the authoritative seat-hold state machine.  This file defines the
// sentinel errors callers use to distinguish failure scenarios.  Anything
// not covered by a sentinel is a transport-level failure wrapped with
// context; callers treat those as transient network errors.
package backend

import "errors"

// ErrSeatUnavailable is returned when the backend rejects a hold because
// another session already holds or booked the seat.  The local optimistic
// state must be reverted; the store is corrected by the next push event or
// snapshot.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrShowtimeNotFound is returned when the backend does not know the
// requested showtime.  Treated as fatal for the page view, like a snapshot
// load failure.
var ErrShowtimeNotFound = errors.New("showtime not found")
