// Package session implements the client-side coordination core of the
// booking page: one actor goroutine owns the seat-availability store and
// every external trigger – user commands, backend completions, live push
// events, countdown ticks – is a message applied on that goroutine.  This
// file defines the sentinel errors of the failure taxonomy.  Anything not
// covered by a sentinel is a transient network failure wrapped with
// context; callers surface those as a generic "couldn't select this seat"
// notification and do not retry automatically.
package session

import "errors"

// ErrQuotaExceeded is returned when selecting a seat would exceed the
// ticket quota purchased for its category.  Raised locally before any
// network call; no state changes.
var ErrQuotaExceeded = errors.New("ticket quota exceeded")

// ErrSeatUnavailable is returned when the backend rejected a hold because
// another session won the race, or when the store already shows the seat
// as booked or held.  The seat stays out of the local selection; push
// events or the next snapshot correct the map.
var ErrSeatUnavailable = errors.New("seat can no longer be selected")

// ErrToggleInFlight is returned when a seat receives a second toggle while
// its first one has not resolved yet.  Nothing changes; the caller simply
// waits for the first toggle's outcome.
var ErrToggleInFlight = errors.New("seat toggle already in flight")

// ErrNotSelectable is returned for placeholder cells and unknown seat ids.
var ErrNotSelectable = errors.New("seat is not selectable")

// ErrNoShowtime is returned when a command arrives before a showtime has
// been selected and seeded, or while the snapshot load is still running.
var ErrNoShowtime = errors.New("no showtime selected")

// ErrShowtimeChanged is returned to a caller whose in-flight operation was
// overtaken by a showtime change.  The operation's backend effects, if
// any, are left for the backend's own expiry to reclaim.
var ErrShowtimeChanged = errors.New("showtime changed")

// ErrSnapshotLoad marks the unrecoverable condition of the page view: the
// initial seed fetch failed, so seat state is unknown and the seat map is
// blocked until a retry succeeds.
var ErrSnapshotLoad = errors.New("seat snapshot load failed")

// ErrClosed is returned once the session has been shut down.
var ErrClosed = errors.New("session closed")
