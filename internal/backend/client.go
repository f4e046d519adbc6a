package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/layout"
	"github.com/iliyamo/seat-sync-client/internal/model"
)

// Client talks to the booking backend's REST API.  Every request carries
// the user's bearer token and the session origin id; the origin is echoed
// back on the live channel so sessions can recognise their own events.
// The client is safe for concurrent use: both halves of a paired hold are
// issued through it at the same time.
type Client struct {
	baseURL string
	token   string
	origin  string
	http    *http.Client
}

// New returns a Client for the given base URL.  token is the user's access
// token, origin the per-session id stamped on hold and release requests.
func New(baseURL, token, origin string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		origin:  origin,
		http:    &http.Client{Timeout: timeout},
	}
}

// HeldSeat is one entry of the held-seats snapshot: who holds which seat
// and until when.  ExpiresAt is UTC.
type HeldSeat struct {
	SeatID    model.SeatID `json:"seat_id"`
	UserID    string       `json:"user_id"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// RoomLayout bundles everything needed to build the render-ready seat map
// for one showtime: the grid cells, the real seat records and the base
// ticket price the extras are added to.
type RoomLayout struct {
	Cells          []layout.Cell       `json:"cells"`
	Seats          []layout.SeatRecord `json:"seats"`
	BasePriceCents uint32              `json:"base_price_cents"`
}

// HeldSeats fetches the currently-held seats of a showtime across all
// users, with holder identity and expiry.  Part of the initial snapshot.
func (c *Client) HeldSeats(ctx context.Context, showtimeID uint64) ([]HeldSeat, error) {
	var out struct {
		Items []HeldSeat `json:"items"`
	}
	if err := c.get(ctx, c.showtimePath(showtimeID, "holds"), &out); err != nil {
		return nil, fmt.Errorf("fetch held seats: %w", err)
	}
	return out.Items, nil
}

// BookedSeats fetches the permanently sold seats of a showtime.
func (c *Client) BookedSeats(ctx context.Context, showtimeID uint64) ([]model.SeatID, error) {
	var out struct {
		Items []struct {
			SeatID model.SeatID `json:"seat_id"`
		} `json:"items"`
	}
	if err := c.get(ctx, c.showtimePath(showtimeID, "booked"), &out); err != nil {
		return nil, fmt.Errorf("fetch booked seats: %w", err)
	}
	ids := make([]model.SeatID, 0, len(out.Items))
	for _, it := range out.Items {
		ids = append(ids, it.SeatID)
	}
	return ids, nil
}

// HoldSeat asks the backend to place a hold on a single seat.  On success
// it returns the server-reported expiry of the new lease; the backend is
// authoritative on lease length.  A 409 or 400 response maps to
// ErrSeatUnavailable.
func (c *Client) HoldSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) (time.Time, error) {
	var out struct {
		ExpiresAt time.Time `json:"expires_at"`
	}
	err := c.post(ctx, c.showtimePath(showtimeID, "hold"), seatBody{SeatID: seatID, Origin: c.origin}, &out)
	if err != nil {
		return time.Time{}, fmt.Errorf("hold seat %s: %w", seatID, err)
	}
	return out.ExpiresAt.UTC(), nil
}

// ReleaseSeat asks the backend to release a hold on a single seat.  The
// endpoint is idempotent: releasing an already-released seat is not an
// error.
func (c *Client) ReleaseSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) error {
	if err := c.post(ctx, c.showtimePath(showtimeID, "release"), seatBody{SeatID: seatID, Origin: c.origin}, nil); err != nil {
		return fmt.Errorf("release seat %s: %w", seatID, err)
	}
	return nil
}

// Layout fetches the room layout and seat records of a showtime.
func (c *Client) Layout(ctx context.Context, showtimeID uint64) (*RoomLayout, error) {
	var out RoomLayout
	if err := c.get(ctx, c.showtimePath(showtimeID, "layout"), &out); err != nil {
		return nil, fmt.Errorf("fetch layout: %w", err)
	}
	return &out, nil
}

type seatBody struct {
	SeatID model.SeatID `json:"seat_id"`
	Origin string       `json:"origin"`
}

func (c *Client) showtimePath(showtimeID uint64, tail string) string {
	return "/v1/showtimes/" + strconv.FormatUint(showtimeID, 10) + "/" + tail
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and maps the response status onto the error
// taxonomy.  2xx decodes into out when provided; 400/409 mean the seat
// raced away; 404 means the showtime is unknown; everything else is a
// generic transport failure.
func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusBadRequest:
		return ErrSeatUnavailable
	case resp.StatusCode == http.StatusNotFound:
		return ErrShowtimeNotFound
	default:
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
}
