package session

import (
	"context"

	"github.com/iliyamo/seat-sync-client/internal/model"
)

// SeatState is the per-cell tagged status the seat map renders from.
// Pending is an explicit state so a cell with an in-flight toggle can be
// drawn busy and cannot be double-submitted.
type SeatState string

const (
	StateAvailable   SeatState = "available"
	StatePendingHold SeatState = "pending"
	StateMine        SeatState = "mine"
	StateHeldByOther SeatState = "held"
	StateBooked      SeatState = "booked"
	StateNone        SeatState = "none" // placeholder cell, nothing to select
)

// SeatView is one render-ready cell plus its current status.
type SeatView struct {
	model.SeatCell
	State SeatState `json:"state"`
}

// View is the complete read model exposed to the rest of the application:
// the seat list, the selection totals for the summary bar, the ticket
// quota, and the countdown.  Loading and Blocked describe the page-level
// states around the snapshot fetch.
type View struct {
	ShowtimeID       uint64                     `json:"showtime_id"`
	Loading          bool                       `json:"loading"`
	Blocked          bool                       `json:"blocked"` // snapshot load failed; retry by reselecting
	Seats            []SeatView                 `json:"seats"`
	Chosen           []model.SeatCell           `json:"chosen"`
	Counts           map[model.SeatCategory]int `json:"counts"`
	TotalPriceCents  uint64                     `json:"total_price_cents"`
	Quota            model.TicketQuota          `json:"quota"`
	RemainingSeconds int                        `json:"remaining_seconds"`
}

// Snapshot assembles the current view inside the actor, so the result is a
// consistent cut of the store with no mutation racing it.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.do(ctx, func(reply chan<- error) {
		v = s.buildView()
		reply <- nil
	})
	return v, err
}

func (s *Session) buildView() View {
	counts, price := s.store.Totals()
	v := View{
		ShowtimeID:       s.store.ShowtimeID(),
		Loading:          s.loading,
		Blocked:          s.loadErr != nil,
		Chosen:           s.store.Mine(),
		Counts:           counts,
		TotalPriceCents:  price,
		Quota:            s.quota.Clone(),
		RemainingSeconds: s.remainingSeconds(),
	}
	v.Seats = make([]SeatView, 0, len(s.cells))
	for _, cell := range s.cells {
		v.Seats = append(v.Seats, SeatView{SeatCell: cell, State: s.cellState(cell)})
	}
	return v
}

// cellState collapses the store sets and the pending bookkeeping into the
// tagged per-cell variant.  Booked wins over everything; pending over the
// rest, so an in-flight toggle renders busy even while the optimistic
// outcome is unknown.
func (s *Session) cellState(cell model.SeatCell) SeatState {
	if !cell.Selectable() {
		return StateNone
	}
	for _, id := range cell.IDs() {
		if s.store.IsBooked(id) {
			return StateBooked
		}
	}
	if _, inFlight := s.pending[cell.ID]; inFlight {
		return StatePendingHold
	}
	if _, mine := s.store.MineCell(cell.ID); mine {
		return StateMine
	}
	for _, id := range cell.IDs() {
		if s.store.IsHeldByOther(id) {
			return StateHeldByOther
		}
	}
	return StateAvailable
}
