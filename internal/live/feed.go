// Package live maintains the push-event subscription for the showtime the
// user is currently viewing.  Seat status changes made by other sessions
// arrive here and are forwarded to the session loop, which applies them to
// the store.  Exactly one showtime is subscribed at a time; selecting a
// different showtime leaves the old room before joining the new one.
package live

import (
	"context"

	"github.com/iliyamo/seat-sync-client/internal/model"
)

// Feed is the transport behind the live seat-event channel.  Join tears
// down any previous subscription, subscribes to the given showtime's room
// and returns the channel events arrive on.  The channel is closed when
// Leave is called or the subscription dies; the session treats a closed
// channel as "no more live updates" and keeps serving the last known state.
type Feed interface {
	Join(ctx context.Context, showtimeID uint64) (<-chan model.SeatEvent, error)
	Leave()
}
