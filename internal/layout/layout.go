// Package layout merges the raw room layout (grid cells with a category)
// with the real seat records (id, number, category, extra price) into the
// render-ready seat list the booking page draws.  The merge is a pure data
// transform: cells and records are matched on the seat number derived from
// row letter and column index, paired cells absorb the record of the
// adjacent column, and placeholder cells pass through without a seat id.
package layout

import (
	"sort"
	"strings"

	"github.com/iliyamo/seat-sync-client/internal/model"
)

// Cell is one grid position as returned by the room layout endpoint.
type Cell struct {
	Row      string             `json:"row"`
	Column   int                `json:"column"`
	Category model.SeatCategory `json:"category"`
}

// SeatRecord is one reservable seat as returned by the room seats endpoint.
// Number is the row+column derived label ("A3") used for matching.
type SeatRecord struct {
	ID              model.SeatID       `json:"id"`
	Number          string             `json:"number"`
	Category        model.SeatCategory `json:"category"`
	ExtraPriceCents uint32             `json:"extra_price_cents"`
}

// Build merges grid cells and seat records into render-ready cells.
// basePriceCents is the showtime's base ticket price; each matched seat adds
// its own extra on top, and a paired cell is billed for both halves.  Cells
// whose derived number has no backing record are demoted to placeholders so
// the page never offers a seat the backend cannot hold.  The result is
// ordered row by row, left to right.
func Build(cells []Cell, records []SeatRecord, basePriceCents uint32) []model.SeatCell {
	byNumber := make(map[string]SeatRecord, len(records))
	for _, r := range records {
		byNumber[strings.ToUpper(strings.TrimSpace(r.Number))] = r
	}

	out := make([]model.SeatCell, 0, len(cells))
	for _, c := range cells {
		row := strings.ToUpper(strings.TrimSpace(c.Row))
		if c.Category == model.CategoryPlaceholder {
			out = append(out, model.SeatCell{Row: row, Column: c.Column, Category: model.CategoryPlaceholder})
			continue
		}
		primary, ok := byNumber[model.SeatNumber(row, c.Column)]
		if !ok {
			// grid says seat, backend knows nothing about it
			out = append(out, model.SeatCell{Row: row, Column: c.Column, Category: model.CategoryPlaceholder})
			continue
		}
		cell := model.SeatCell{
			Row:        row,
			Column:     c.Column,
			Category:   c.Category,
			Label:      primary.Number,
			ID:         primary.ID,
			PriceCents: basePriceCents + primary.ExtraPriceCents,
		}
		if c.Category == model.CategoryPaired {
			secondary, ok := byNumber[model.SeatNumber(row, c.Column+1)]
			if !ok {
				// a couple cell without its second half cannot be sold
				out = append(out, model.SeatCell{Row: row, Column: c.Column, Category: model.CategoryPlaceholder})
				continue
			}
			cell.PartnerID = secondary.ID
			cell.Label = primary.Number + "-" + secondary.Number
			cell.PriceCents += basePriceCents + secondary.ExtraPriceCents
		}
		out = append(out, cell)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, okI := rowIndex(out[i].Row)
		rj, okJ := rowIndex(out[j].Row)
		if !okI || !okJ {
			if out[i].Row != out[j].Row {
				return out[i].Row < out[j].Row
			}
		} else if ri != rj {
			return ri < rj
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// rowIndex converts an alphabetic row label to a sortable index the way a
// spreadsheet numbers columns: A=1, B=2, ..., Z=26, AA=27.  Returns false
// for labels containing anything other than A-Z.
func rowIndex(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, true
}
