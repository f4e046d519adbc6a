package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/seat-sync-client/internal/backend"
	"github.com/iliyamo/seat-sync-client/internal/layout"
	"github.com/iliyamo/seat-sync-client/internal/model"
)

// ---- fakes -------------------------------------------------------------

// fakeClock is a manually advanced clock shared by the session and the
// fake backend, so lease expiries and the countdown agree.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeAPI is an in-memory stand-in for the booking backend.  Holds are
// granted with a fixed lease TTL unless a per-seat error or gate is
// configured; every call is recorded.
type fakeAPI struct {
	mu       sync.Mutex
	now      func() time.Time
	room     *backend.RoomLayout
	held     []backend.HeldSeat
	booked   []model.SeatID
	leaseTTL time.Duration
	snapErr  error
	holdErr  map[model.SeatID]error
	holdGate map[model.SeatID]chan struct{}

	holdCalls    []model.SeatID
	releaseCalls []model.SeatID
}

func (f *fakeAPI) Layout(ctx context.Context, showtimeID uint64) (*backend.RoomLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return f.room, nil
}

func (f *fakeAPI) HeldSeats(ctx context.Context, showtimeID uint64) ([]backend.HeldSeat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return append([]backend.HeldSeat(nil), f.held...), nil
}

func (f *fakeAPI) BookedSeats(ctx context.Context, showtimeID uint64) ([]model.SeatID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return append([]model.SeatID(nil), f.booked...), nil
}

func (f *fakeAPI) HoldSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) (time.Time, error) {
	f.mu.Lock()
	f.holdCalls = append(f.holdCalls, seatID)
	gate := f.holdGate[seatID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.holdErr[seatID]; err != nil {
		return time.Time{}, err
	}
	return f.now().Add(f.leaseTTL), nil
}

func (f *fakeAPI) ReleaseSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseCalls = append(f.releaseCalls, seatID)
	return nil
}

func (f *fakeAPI) holds() []model.SeatID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SeatID(nil), f.holdCalls...)
}

func (f *fakeAPI) releases() []model.SeatID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SeatID(nil), f.releaseCalls...)
}

// fakeFeed hands out buffered channels and records joins/leaves.
type fakeFeed struct {
	mu     sync.Mutex
	ch     chan model.SeatEvent
	joined []uint64
	leaves int
}

func (f *fakeFeed) Join(ctx context.Context, showtimeID uint64) (<-chan model.SeatEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = make(chan model.SeatEvent, 16)
	f.joined = append(f.joined, showtimeID)
	return f.ch, nil
}

func (f *fakeFeed) Leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves++
}

func (f *fakeFeed) emit(ev model.SeatEvent) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()
	ch <- ev
}

func (f *fakeFeed) joins() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.joined...)
}

// ---- harness -----------------------------------------------------------

// testRoom is a small hall: four ordinary seats, one paired cell and one
// aisle placeholder.  Base price 10000, the couple seats carry extras.
func testRoom() *backend.RoomLayout {
	return &backend.RoomLayout{
		BasePriceCents: 10000,
		Cells: []layout.Cell{
			{Row: "A", Column: 1, Category: model.CategoryOrdinary},
			{Row: "A", Column: 2, Category: model.CategoryOrdinary},
			{Row: "A", Column: 3, Category: model.CategoryPlaceholder},
			{Row: "B", Column: 2, Category: model.CategoryOrdinary},
			{Row: "C", Column: 5, Category: model.CategoryPaired},
			{Row: "D", Column: 1, Category: model.CategoryOrdinary},
		},
		Seats: []layout.SeatRecord{
			{ID: "A1", Number: "A1", Category: model.CategoryOrdinary},
			{ID: "A2", Number: "A2", Category: model.CategoryOrdinary},
			{ID: "B2", Number: "B2", Category: model.CategoryOrdinary},
			{ID: "C5", Number: "C5", Category: model.CategoryPaired, ExtraPriceCents: 2000},
			{ID: "C6", Number: "C6", Category: model.CategoryPaired, ExtraPriceCents: 2000},
			{ID: "D1", Number: "D1", Category: model.CategoryOrdinary},
		},
	}
}

type env struct {
	sess  *Session
	api   *fakeAPI
	feed  *fakeFeed
	clock *fakeClock
	ticks chan time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1700000000, 0).UTC()}
	api := &fakeAPI{
		now:      clock.Now,
		leaseTTL: 330 * time.Second,
		holdErr:  map[model.SeatID]error{},
		holdGate: map[model.SeatID]chan struct{}{},
		room:     testRoom(),
	}
	feed := &fakeFeed{}
	ticks := make(chan time.Time)
	sess := New("42", api, feed, nil, Options{
		Origin:        "me",
		LeaseDuration: 300 * time.Second,
		SafetyMargin:  30 * time.Second,
		Now:           clock.Now,
		Ticks:         ticks,
	})
	go sess.Run()
	t.Cleanup(sess.Close)
	return &env{sess: sess, api: api, feed: feed, clock: clock, ticks: ticks}
}

func (e *env) selectShowtime(t *testing.T, id uint64) {
	t.Helper()
	if err := e.sess.SelectShowtime(context.Background(), id); err != nil {
		t.Fatalf("SelectShowtime(%d): %v", id, err)
	}
}

func (e *env) setQuota(t *testing.T, cat model.SeatCategory, n int) {
	t.Helper()
	if err := e.sess.SetTicketQuota(context.Background(), cat, n); err != nil {
		t.Fatalf("SetTicketQuota(%s, %d): %v", cat, n, err)
	}
}

func (e *env) view(t *testing.T) View {
	t.Helper()
	v, err := e.sess.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return v
}

// waitFor polls the view until cond holds; push events and expiry cleanup
// land asynchronously in the actor loop.
func (e *env) waitFor(t *testing.T, desc string, cond func(View) bool) View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		v := e.view(t)
		if cond(v) {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last view: %+v", desc, v)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func seatState(v View, id model.SeatID) SeatState {
	for _, sv := range v.Seats {
		if sv.ID == id || (sv.PartnerID != "" && sv.PartnerID == id) {
			return sv.State
		}
	}
	return SeatState("missing")
}

func (e *env) tick(t *testing.T) {
	t.Helper()
	select {
	case e.ticks <- e.clock.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("session loop did not accept a tick")
	}
}
