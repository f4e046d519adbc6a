package model

// TicketQuota maps a seat category to the number of tickets the user has
// chosen to purchase in the ticket stepper.  It acts as an admission gate:
// the number of chosen seats of a category must never exceed the quota for
// that category.  A quota is reset whenever the showtime selection changes.
type TicketQuota map[SeatCategory]int

// Allowance returns the quota for a category; absent categories have zero.
func (q TicketQuota) Allowance(cat SeatCategory) int { return q[cat] }

// Clone returns an independent copy so callers can hand quotas across the
// session boundary without sharing the underlying map.
func (q TicketQuota) Clone() TicketQuota {
	out := make(TicketQuota, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
