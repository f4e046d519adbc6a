package model

import "strconv"

// SeatID identifies one reservable seat as the backend knows it.  IDs are
// opaque strings derived from the seat number (e.g. "A1", "C5"); the client
// never takes them apart, it only matches and forwards them.
type SeatID string

// SeatCategory classifies a layout cell.  Placeholder cells exist only in
// the grid (aisles, gaps) and carry no reservable seat behind them.
type SeatCategory string

const (
	CategoryOrdinary    SeatCategory = "ORDINARY"
	CategoryPremium     SeatCategory = "PREMIUM"
	CategoryPaired      SeatCategory = "PAIRED"
	CategoryPlaceholder SeatCategory = "PLACEHOLDER"
)

// SeatCell is one render-ready cell of the seat map.  A cell is a layout
// unit, not necessarily one reservable seat: a paired ("couple") cell spans
// two adjacent columns and carries both underlying seat IDs, which are
// always held, released and billed together.
//
// Fields:
//  Row        – row letter of the cell ("A", "B", ...).
//  Column     – leftmost column index the cell occupies, 1-based.
//  Category   – seat category; PLACEHOLDER cells are not selectable.
//  Label      – display label ("A1", or "C5-C6" for a paired cell).
//  ID         – primary reservable seat id; empty for placeholders.
//  PartnerID  – secondary seat id of a paired cell; empty otherwise.
//  PriceCents – full price of selecting this cell (both halves for a pair).
type SeatCell struct {
	Row        string       `json:"row"`
	Column     int          `json:"column"`
	Category   SeatCategory `json:"category"`
	Label      string       `json:"label"`
	ID         SeatID       `json:"id,omitempty"`
	PartnerID  SeatID       `json:"partner_id,omitempty"`
	PriceCents uint32       `json:"price_cents"`
}

// IDs returns the underlying seat ids the cell maps to: one for an ordinary
// or premium cell, two for a paired cell, none for a placeholder.
func (c SeatCell) IDs() []SeatID {
	if c.ID == "" {
		return nil
	}
	if c.PartnerID != "" {
		return []SeatID{c.ID, c.PartnerID}
	}
	return []SeatID{c.ID}
}

// Selectable reports whether the cell is backed by at least one real seat.
func (c SeatCell) Selectable() bool { return c.ID != "" }

// SeatNumber builds the backend seat number for a row letter and a 1-based
// column, e.g. ("A", 3) -> "A3".  Layout cells and seat records are merged
// on this derived number.
func SeatNumber(row string, column int) string {
	return row + strconv.Itoa(column)
}
