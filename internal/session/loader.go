package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/backend"
	"github.com/iliyamo/seat-sync-client/internal/layout"
	"github.com/iliyamo/seat-sync-client/internal/model"
)

// SelectShowtime switches the session to a new showtime.  It tears down
// the previous subscription and countdown, resets the store, then runs the
// one-shot reconciliation: layout, held seats and booked seats are fetched
// concurrently, the snapshot is applied (the user's own prior holds are
// restored, everyone else's seed the held-by-others set), and only then is
// the live feed joined – subscribing first would apply events against an
// unseeded store.  A failed fetch leaves the store empty and the seat map
// blocked (ErrSnapshotLoad); calling SelectShowtime again retries.
func (s *Session) SelectShowtime(ctx context.Context, showtimeID uint64) error {
	return s.do(ctx, func(reply chan<- error) {
		s.epoch++
		if s.feed != nil {
			s.feed.Leave()
		}
		s.events = nil
		s.store.Reset(showtimeID)
		s.cells = nil
		s.cellByID = make(map[model.SeatID]model.SeatCell)
		s.quota = model.TicketQuota{}
		s.leases = make(map[model.SeatID]time.Time)
		s.pending = make(map[model.SeatID]pendingToggle)
		s.phase = phaseIdle
		s.deadline = time.Time{}
		s.loading = true
		s.loadErr = nil
		go s.loadSnapshot(s.epoch, showtimeID, reply)
	})
}

// loadSnapshot runs outside the actor: the three fetches go out together
// and are joined before anything is applied.
func (s *Session) loadSnapshot(epoch, showtimeID uint64, reply chan<- error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		room      *backend.RoomLayout
		held      []backend.HeldSeat
		booked    []model.SeatID
		layoutErr error
		heldErr   error
		bookedErr error
	)
	done := make(chan struct{}, 3)
	go func() { room, layoutErr = s.api.Layout(ctx, showtimeID); done <- struct{}{} }()
	go func() { held, heldErr = s.api.HeldSeats(ctx, showtimeID); done <- struct{}{} }()
	go func() { booked, bookedErr = s.api.BookedSeats(ctx, showtimeID); done <- struct{}{} }()
	for i := 0; i < 3; i++ {
		<-done
	}

	err := layoutErr
	if err == nil {
		err = heldErr
	}
	if err == nil {
		err = bookedErr
	}
	if err != nil {
		s.post(func() { s.failLoad(epoch, err, reply) })
		return
	}
	s.post(func() { s.finishLoad(epoch, showtimeID, room, held, booked, reply) })
}

// failLoad marks the page view unusable: operating with unknown seat state
// risks offering seats that are already gone, so the map stays blocked
// until a retry succeeds.
func (s *Session) failLoad(epoch uint64, cause error, reply chan<- error) {
	if epoch != s.epoch {
		reply <- ErrShowtimeChanged
		return
	}
	s.loading = false
	s.loadErr = fmt.Errorf("%w: %v", ErrSnapshotLoad, cause)
	log.Printf("seat-session: snapshot load failed: %v", cause)
	reply <- s.loadErr
}

// finishLoad applies the snapshot inside the actor and joins the live
// feed.  Restored holds of the current user re-enter the selection with their
// server-reported expiry; a restored lease whose remaining time is inside
// the safety margin is treated as already expired and dropped without
// starting the countdown.
func (s *Session) finishLoad(epoch, showtimeID uint64, room *backend.RoomLayout, held []backend.HeldSeat, booked []model.SeatID, reply chan<- error) {
	if epoch != s.epoch {
		reply <- ErrShowtimeChanged
		return
	}

	s.cells = layout.Build(room.Cells, room.Seats, room.BasePriceCents)
	for _, cell := range s.cells {
		if cell.ID != "" {
			s.cellByID[cell.ID] = cell
		}
		if cell.PartnerID != "" {
			s.cellByID[cell.PartnerID] = cell
		}
	}

	s.store.ApplyBooked(booked)

	var others []model.SeatID
	for _, h := range held {
		if h.UserID != s.userID {
			others = append(others, h.SeatID)
			continue
		}
		cell, ok := s.cellByID[h.SeatID]
		if !ok {
			log.Printf("seat-session: snapshot holds unknown seat %s, skipping", h.SeatID)
			continue
		}
		if _, already := s.store.MineCell(cell.ID); already {
			// second half of a paired cell; keep the earlier expiry
			if exp, ok := s.leases[cell.ID]; !ok || h.ExpiresAt.Before(exp) {
				s.leases[cell.ID] = h.ExpiresAt
			}
			continue
		}
		s.store.ToggleMine(cell)
		s.leases[cell.ID] = h.ExpiresAt
	}
	s.store.ApplyHeldByOthers(others)

	s.recomputeCountdown()
	if s.phase == phaseCounting && !s.deadline.After(s.now()) {
		// the restored selection is inside the safety margin: already stale
		log.Printf("seat-session: restored holds already expired, clearing selection")
		s.store.ClearMine()
		s.leases = make(map[model.SeatID]time.Time)
		s.phase = phaseIdle
		s.deadline = time.Time{}
	}

	// the ticket stepper must match the restored selection
	for cat, n := range quotaFromSelection(s.store.Mine()) {
		s.quota[cat] = n
	}

	s.loading = false
	if s.feed != nil {
		evCh, err := s.feed.Join(context.Background(), showtimeID)
		if err != nil {
			// live updates are an enhancement; the page still works off the
			// snapshot, it just will not see other sessions' moves
			log.Printf("seat-session: live feed join failed: %v", err)
		} else {
			s.events = evCh
		}
	}
	reply <- nil
}

// quotaFromSelection derives the implied per-category ticket counts of a
// restored selection.  Display convenience, not a source of truth.
func quotaFromSelection(cells []model.SeatCell) model.TicketQuota {
	q := model.TicketQuota{}
	for _, c := range cells {
		q[c.Category]++
	}
	return q
}
