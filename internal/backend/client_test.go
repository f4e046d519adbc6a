package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", "origin-1", 2*time.Second)
}

func TestHoldSeatSuccess(t *testing.T) {
	exp := time.Now().UTC().Add(330 * time.Second).Truncate(time.Second)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/showtimes/7/hold" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		var body struct {
			SeatID string `json:"seat_id"`
			Origin string `json:"origin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.SeatID != "A1" || body.Origin != "origin-1" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"expires_at": exp.Format(time.RFC3339)})
	})

	got, err := c.HoldSeat(context.Background(), 7, "A1")
	if err != nil {
		t.Fatalf("HoldSeat: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}

func TestHoldSeatConflictMapsToUnavailable(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusBadRequest} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		_, err := c.HoldSeat(context.Background(), 7, "A1")
		if !errors.Is(err, ErrSeatUnavailable) {
			t.Fatalf("status %d: err = %v, want ErrSeatUnavailable", status, err)
		}
	}
}

func TestUnknownShowtime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.HeldSeats(context.Background(), 99)
	if !errors.Is(err, ErrShowtimeNotFound) {
		t.Fatalf("err = %v, want ErrShowtimeNotFound", err)
	}
}

func TestServerErrorIsGenericNetworkFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.HoldSeat(context.Background(), 7, "A1")
	if err == nil || errors.Is(err, ErrSeatUnavailable) || errors.Is(err, ErrShowtimeNotFound) {
		t.Fatalf("err = %v, want a plain wrapped failure", err)
	}
}

func TestReleaseSeatIdempotentOK(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/showtimes/7/release" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := c.ReleaseSeat(context.Background(), 7, "A1"); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := c.ReleaseSeat(context.Background(), 7, "A1"); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestSnapshotFetches(t *testing.T) {
	exp := time.Now().UTC().Add(45 * time.Second).Truncate(time.Second)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/showtimes/7/holds":
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
				{"seat_id": "D1", "user_id": "42", "expires_at": exp.Format(time.RFC3339)},
				{"seat_id": "B2", "user_id": "99", "expires_at": exp.Format(time.RFC3339)},
			}})
		case "/v1/showtimes/7/booked":
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
				{"seat_id": "A1"},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	held, err := c.HeldSeats(context.Background(), 7)
	if err != nil {
		t.Fatalf("HeldSeats: %v", err)
	}
	if len(held) != 2 || held[0].SeatID != "D1" || held[0].UserID != "42" || !held[0].ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected held: %+v", held)
	}

	booked, err := c.BookedSeats(context.Background(), 7)
	if err != nil {
		t.Fatalf("BookedSeats: %v", err)
	}
	if len(booked) != 1 || booked[0] != model.SeatID("A1") {
		t.Fatalf("unexpected booked: %v", booked)
	}
}

func TestLayoutFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/showtimes/7/layout" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"base_price_cents": 10000,
			"cells":            []map[string]any{{"row": "A", "column": 1, "category": "ORDINARY"}},
			"seats":            []map[string]any{{"id": "A1", "number": "A1", "category": "ORDINARY", "extra_price_cents": 0}},
		})
	})
	l, err := c.Layout(context.Background(), 7)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if l.BasePriceCents != 10000 || len(l.Cells) != 1 || len(l.Seats) != 1 {
		t.Fatalf("unexpected layout: %+v", l)
	}
}
