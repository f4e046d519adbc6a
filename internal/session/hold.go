package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/backend"
	"github.com/iliyamo/seat-sync-client/internal/journal"
	"github.com/iliyamo/seat-sync-client/internal/model"
)

// ToggleSeat selects the seat when it is free and deselects it when it is
// part of the user's current selection.  Holding goes through the quota
// gate first (no network call on ErrQuotaExceeded), then issues one hold
// request per underlying seat id concurrently; a paired cell is
// all-or-nothing, with a compensating release when exactly one half
// succeeded.  Releasing is symmetric but tolerant: individual release
// failures are logged and never keep the seat in the local selection.
//
// The call blocks its caller until the toggle resolves, but the session
// loop stays free – other seats can be toggled while this one is in
// flight.  A second toggle for the same seat while the first is pending
// returns ErrToggleInFlight.
func (s *Session) ToggleSeat(ctx context.Context, seatID model.SeatID) error {
	return s.do(ctx, func(reply chan<- error) {
		if s.store.ShowtimeID() == 0 || s.loading {
			reply <- ErrNoShowtime
			return
		}
		if s.loadErr != nil {
			reply <- s.loadErr
			return
		}
		cell, ok := s.cellByID[seatID]
		if !ok || !cell.Selectable() {
			reply <- ErrNotSelectable
			return
		}
		if _, inFlight := s.pending[cell.ID]; inFlight {
			reply <- ErrToggleInFlight
			return
		}
		if _, mine := s.store.MineCell(cell.ID); mine {
			s.pending[cell.ID] = pendingToggle{cell: cell}
			go s.releaseCell(s.epoch, s.store.ShowtimeID(), cell, reply)
			return
		}
		// local fast fail: the map already knows the seat is gone
		for _, id := range cell.IDs() {
			if s.store.IsBooked(id) || s.store.IsHeldByOther(id) {
				reply <- ErrSeatUnavailable
				return
			}
		}
		// quota gate, before any network call.  In-flight holds count too:
		// a second toggle of the same category must not pass the gate while
		// an earlier one is still unconfirmed.
		if s.store.MineCount(cell.Category)+s.pendingHoldCount(cell.Category) >= s.quota.Allowance(cell.Category) {
			reply <- ErrQuotaExceeded
			return
		}
		s.pending[cell.ID] = pendingToggle{cell: cell, hold: true}
		go s.holdCell(s.epoch, s.store.ShowtimeID(), cell, reply)
	})
}

// pendingHoldCount counts in-flight holds of a category.  They occupy quota
// before they confirm; in-flight releases do not count, their cell is still
// in the selection and already counted by MineCount.
func (s *Session) pendingHoldCount(cat model.SeatCategory) int {
	n := 0
	for _, p := range s.pending {
		if p.hold && p.cell.Category == cat {
			n++
		}
	}
	return n
}

// holdCell runs outside the actor.  It issues the per-id hold requests
// concurrently, joins them, compensates a half-held pair, and posts the
// outcome back into the loop.  Backend calls use a background context on
// purpose: navigation does not cancel them, their completions are simply
// discarded when the epoch moved on.
func (s *Session) holdCell(epoch, showtimeID uint64, cell model.SeatCell, reply chan<- error) {
	ids := cell.IDs()
	type outcome struct {
		id  model.SeatID
		exp time.Time
		err error
	}
	results := make(chan outcome, len(ids))
	for _, id := range ids {
		go func(id model.SeatID) {
			exp, err := s.api.HoldSeat(context.Background(), showtimeID, id)
			results <- outcome{id: id, exp: exp, err: err}
		}(id)
	}

	var firstErr error
	var succeeded []model.SeatID
	earliest := time.Time{}
	for range ids {
		r := <-results
		if r.err != nil {
			if firstErr == nil || errors.Is(r.err, backend.ErrSeatUnavailable) {
				firstErr = r.err
			}
			continue
		}
		succeeded = append(succeeded, r.id)
		if earliest.IsZero() || r.exp.Before(earliest) {
			earliest = r.exp
		}
	}

	if firstErr != nil {
		// never leave a partially-held pair behind
		for _, id := range succeeded {
			if err := s.api.ReleaseSeat(context.Background(), showtimeID, id); err != nil {
				log.Printf("seat-session: compensating release of %s failed: %v", id, err)
			}
		}
		if errors.Is(firstErr, backend.ErrSeatUnavailable) {
			firstErr = ErrSeatUnavailable
		}
		s.post(func() { s.finishHold(epoch, cell, time.Time{}, firstErr, reply) })
		return
	}
	s.post(func() { s.finishHold(epoch, cell, earliest, nil, reply) })
}

// finishHold runs inside the actor and reconciles the hold outcome with
// local state.  Completions from a previous showtime are no-ops: the store
// reset is the cancellation mechanism and the backend's expiry reclaims
// the stray hold.
func (s *Session) finishHold(epoch uint64, cell model.SeatCell, earliest time.Time, err error, reply chan<- error) {
	if epoch != s.epoch {
		log.Printf("seat-session: discarding hold completion for %s after showtime change", cell.Label)
		reply <- ErrShowtimeChanged
		return
	}
	delete(s.pending, cell.ID)
	if err != nil {
		reply <- err
		return
	}
	// a held broadcast for this seat may have raced the confirmation into
	// the held-by-others set; the confirmed hold owns the seat now
	for _, id := range cell.IDs() {
		s.store.MarkReleased(id)
	}
	s.store.ToggleMine(cell)
	if earliest.IsZero() {
		// backend reported no expiry; assume the configured window
		earliest = s.now().Add(s.opts.LeaseDuration + s.opts.SafetyMargin)
	}
	s.leases[cell.ID] = earliest
	s.recomputeCountdown()
	s.publish(journal.KindHoldConfirmed, s.store.ShowtimeID(), cell.IDs())
	reply <- nil
}

// releaseCell runs outside the actor and releases both underlying ids
// concurrently.  Failures are logged only – the seat leaves the local
// selection regardless, because the backend's own expiry or a later push
// event reconciles the rest.
func (s *Session) releaseCell(epoch, showtimeID uint64, cell model.SeatCell, reply chan<- error) {
	ids := cell.IDs()
	done := make(chan struct{}, len(ids))
	for _, id := range ids {
		go func(id model.SeatID) {
			if err := s.api.ReleaseSeat(context.Background(), showtimeID, id); err != nil {
				log.Printf("seat-session: release of %s failed: %v", id, err)
			}
			done <- struct{}{}
		}(id)
	}
	for range ids {
		<-done
	}
	s.post(func() { s.finishRelease(epoch, cell, reply) })
}

// finishRelease runs inside the actor and removes the cell from the
// selection once the release attempts settled.
func (s *Session) finishRelease(epoch uint64, cell model.SeatCell, reply chan<- error) {
	if epoch != s.epoch {
		reply <- ErrShowtimeChanged
		return
	}
	delete(s.pending, cell.ID)
	if _, mine := s.store.MineCell(cell.ID); mine {
		s.store.ToggleMine(cell)
	}
	delete(s.leases, cell.ID)
	s.recomputeCountdown()
	s.publish(journal.KindHoldsReleased, s.store.ShowtimeID(), cell.IDs())
	reply <- nil
}
