package session

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/journal"
	"github.com/iliyamo/seat-sync-client/internal/model"
)

// The hold countdown is a single clock for the whole selection, driven by
// the earliest lease among the user's held seats: the backend's hold
// duration is uniform per action, so the earliest-held seat is the one
// that turns the whole selection stale first.  The safety margin is
// subtracted so the client reacts before the backend actually expires the
// lease.  States: Idle (nothing held), Counting (>=1 seat held), and a
// transient Expired that releases everything and returns to Idle.

// recomputeCountdown derives the countdown phase and deadline from the
// current leases.  Called after every mutation that can add or remove a
// lease; an empty selection drops straight back to Idle, discarding the
// clock.
func (s *Session) recomputeCountdown() {
	if len(s.leases) == 0 || len(s.store.Mine()) == 0 {
		s.phase = phaseIdle
		s.deadline = time.Time{}
		return
	}
	earliest := time.Time{}
	for _, exp := range s.leases {
		if earliest.IsZero() || exp.Before(earliest) {
			earliest = exp
		}
	}
	s.phase = phaseCounting
	s.deadline = earliest.Add(-s.opts.SafetyMargin)
}

// onTick advances the countdown.  Reaching zero expires the whole
// selection: best-effort releases for every held id, then the selection
// and the ticket summary are cleared and the phase returns to Idle.
func (s *Session) onTick(now time.Time) {
	if s.phase != phaseCounting {
		return
	}
	if now.Before(s.deadline) {
		return
	}
	s.expireSelection()
}

// expireSelection is the Counting -> Expired -> Idle transition.  Release
// calls are fire-and-forget; the backend's own server-side expiry is the
// authoritative backstop when they fail.
func (s *Session) expireSelection() {
	showtimeID := s.store.ShowtimeID()
	var ids []model.SeatID
	for _, cell := range s.store.Mine() {
		ids = append(ids, cell.IDs()...)
	}
	log.Printf("seat-session: hold window expired, releasing %d seat(s)", len(ids))
	for _, id := range ids {
		go func(id model.SeatID) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.api.ReleaseSeat(ctx, showtimeID, id); err != nil {
				log.Printf("seat-session: expiry release of %s failed: %v", id, err)
			}
		}(id)
	}
	s.store.ClearMine()
	s.leases = make(map[model.SeatID]time.Time)
	s.quota = model.TicketQuota{}
	s.phase = phaseIdle
	s.deadline = time.Time{}
	if len(ids) > 0 {
		s.publish(journal.KindHoldsExpired, showtimeID, ids)
	}
}

// remainingSeconds reports the countdown for display, zero when idle.
func (s *Session) remainingSeconds() int {
	if s.phase != phaseCounting {
		return 0
	}
	rem := s.deadline.Sub(s.now())
	if rem <= 0 {
		return 0
	}
	// round up so the display never shows 0 while time is left
	return int((rem + time.Second - 1) / time.Second)
}
