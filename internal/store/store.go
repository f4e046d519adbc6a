// Package store holds the in-memory projection of seat availability for
// exactly one showtime at a time.  It is pure state: it never performs I/O
// and never returns errors.  Mutations come from three places only – the
// initial snapshot, confirmed hold/release outcomes, and live push events –
// and all of them are serialized by the owning session goroutine, so the
// store itself carries no locking.
package store

import "github.com/iliyamo/seat-sync-client/internal/model"

// Store tracks the three disjoint seat sets of one showtime: permanently
// booked seats, seats held by other sessions, and the current user's own
// in-progress selection.  The invariant maintained by every mutation is
// that a seat id appears in at most one of the three sets.
type Store struct {
	showtimeID   uint64
	booked       map[model.SeatID]struct{}
	heldByOthers map[model.SeatID]struct{}
	mine         []model.SeatCell
}

// New returns an empty store.  Reset must be called before any other
// operation once a showtime is selected.
func New() *Store {
	s := &Store{}
	s.Reset(0)
	return s
}

// Reset clears all three sets and binds the store to a new showtime.  It is
// the cancellation mechanism for in-flight work: completions that raced a
// showtime change find the store bound to a different id and are dropped by
// the session.
func (s *Store) Reset(showtimeID uint64) {
	s.showtimeID = showtimeID
	s.booked = make(map[model.SeatID]struct{})
	s.heldByOthers = make(map[model.SeatID]struct{})
	s.mine = nil
}

// ShowtimeID reports which showtime the store is currently bound to.
func (s *Store) ShowtimeID() uint64 { return s.showtimeID }

// ApplyBooked bulk-seeds the booked set from the initial snapshot.
func (s *Store) ApplyBooked(ids []model.SeatID) {
	for _, id := range ids {
		s.MarkBooked(id)
	}
}

// ApplyHeldByOthers bulk-seeds the held-by-others set from the snapshot.
func (s *Store) ApplyHeldByOthers(ids []model.SeatID) {
	for _, id := range ids {
		s.MarkHeld(id)
	}
}

// MarkHeld records that another session holds a seat.  Idempotent.  Seats
// already booked stay booked (booked only ever grows); seats the user
// believes are theirs are left alone – a held echo of the user's own hold
// must not steal the seat from the local selection.
func (s *Store) MarkHeld(id model.SeatID) {
	if _, ok := s.booked[id]; ok {
		return
	}
	if s.IsMine(id) {
		return
	}
	s.heldByOthers[id] = struct{}{}
}

// MarkReleased removes a seat from held-by-others and, when the seat was
// part of the user's own selection, drops the whole owning cell from the
// selection as well.  A released event for one half of a paired cell
// therefore removes both halves, which keeps the pair atomic even when the
// backend emits inconsistent per-seat events.  Idempotent.
func (s *Store) MarkReleased(id model.SeatID) {
	delete(s.heldByOthers, id)
	s.removeMineByID(id)
}

// MarkBooked moves a seat into the booked set, removing it from the other
// two.  Idempotent; booked never shrinks.
func (s *Store) MarkBooked(id model.SeatID) {
	delete(s.heldByOthers, id)
	s.removeMineByID(id)
	s.booked[id] = struct{}{}
}

// ToggleMine adds the cell to the user's selection when absent and removes
// it when present.  It touches only the selection list – booked and
// held-by-others bookkeeping is driven separately by confirmed backend
// outcomes and push events.  It returns true when the cell was added.
func (s *Store) ToggleMine(cell model.SeatCell) bool {
	for i, c := range s.mine {
		if c.ID == cell.ID {
			s.mine = append(s.mine[:i], s.mine[i+1:]...)
			return false
		}
	}
	s.mine = append(s.mine, cell)
	return true
}

// removeMineByID drops the cell owning the given seat id from the selection.
// Matching considers both halves of a paired cell.
func (s *Store) removeMineByID(id model.SeatID) {
	for i, c := range s.mine {
		if c.ID == id || (c.PartnerID != "" && c.PartnerID == id) {
			s.mine = append(s.mine[:i], s.mine[i+1:]...)
			return
		}
	}
}

// IsBooked reports whether the seat is permanently sold.
func (s *Store) IsBooked(id model.SeatID) bool {
	_, ok := s.booked[id]
	return ok
}

// IsHeldByOther reports whether another session currently holds the seat.
func (s *Store) IsHeldByOther(id model.SeatID) bool {
	_, ok := s.heldByOthers[id]
	return ok
}

// IsMine reports whether the seat id belongs to a cell of the user's own
// selection, either as the primary or the paired partner id.
func (s *Store) IsMine(id model.SeatID) bool {
	for _, c := range s.mine {
		if c.ID == id || (c.PartnerID != "" && c.PartnerID == id) {
			return true
		}
	}
	return false
}

// MineCell returns the selected cell whose primary id matches, if any.
func (s *Store) MineCell(id model.SeatID) (model.SeatCell, bool) {
	for _, c := range s.mine {
		if c.ID == id {
			return c, true
		}
	}
	return model.SeatCell{}, false
}

// Mine returns a copy of the user's selection in selection order.
func (s *Store) Mine() []model.SeatCell {
	out := make([]model.SeatCell, len(s.mine))
	copy(out, s.mine)
	return out
}

// MineCount returns how many cells of the given category are selected.
func (s *Store) MineCount(cat model.SeatCategory) int {
	n := 0
	for _, c := range s.mine {
		if c.Category == cat {
			n++
		}
	}
	return n
}

// ClearMine empties the user's selection, leaving the other sets intact.
// Used when the hold countdown expires.
func (s *Store) ClearMine() { s.mine = nil }

// Totals sums the selection for the bottom summary bar: cells per category
// and the combined price in cents.
func (s *Store) Totals() (counts map[model.SeatCategory]int, priceCents uint64) {
	counts = make(map[model.SeatCategory]int)
	for _, c := range s.mine {
		counts[c.Category]++
		priceCents += uint64(c.PriceCents)
	}
	return counts, priceCents
}
