package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-sync-client/internal/backend"
	"github.com/iliyamo/seat-sync-client/internal/journal"
	"github.com/iliyamo/seat-sync-client/internal/live"
	"github.com/iliyamo/seat-sync-client/internal/model"
	"github.com/iliyamo/seat-sync-client/internal/store"
)

// API is the backend surface the session depends on.  *backend.Client
// satisfies it; tests substitute in-memory fakes.
type API interface {
	Layout(ctx context.Context, showtimeID uint64) (*backend.RoomLayout, error)
	HeldSeats(ctx context.Context, showtimeID uint64) ([]backend.HeldSeat, error)
	BookedSeats(ctx context.Context, showtimeID uint64) ([]model.SeatID, error)
	HoldSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) (time.Time, error)
	ReleaseSeat(ctx context.Context, showtimeID uint64, seatID model.SeatID) error
}

// Journal is the sink for fire-and-forget session lifecycle entries.
type Journal interface {
	Publish(ctx context.Context, e journal.Entry) error
}

// Options carries the tunables and, for tests, the injected clock.
type Options struct {
	Origin        string           // origin id shared with the backend client; generated when empty
	LeaseDuration time.Duration    // selection window for a fresh hold
	SafetyMargin  time.Duration    // subtracted from restored server leases
	TickInterval  time.Duration    // countdown tick; defaults to 800ms
	Now           func() time.Time // defaults to time.Now
	Ticks         <-chan time.Time // countdown ticks for tests; overrides TickInterval
}

// pendingToggle records one in-flight toggle: the cell it targets and the
// direction.  Unconfirmed holds must occupy quota, so the gate can count
// them per category before their outcome lands.
type pendingToggle struct {
	cell model.SeatCell
	hold bool
}

type phase int

const (
	phaseIdle phase = iota
	phaseCounting
)

// Session is the coordination actor for one user's booking page.  All
// mutable state below the cmds channel is owned by the Run goroutine and
// must only be touched there; public methods communicate by posting
// closures and waiting on reply channels.
type Session struct {
	id      string // origin id stamped on backend calls and echoed on the live channel
	userID  string
	api     API
	feed    live.Feed
	journal Journal // may be nil

	opts Options
	now  func() time.Time

	cmds   chan func()
	closed chan struct{}
	done   chan struct{}

	// actor-owned state
	store    *store.Store
	cells    []model.SeatCell
	cellByID map[model.SeatID]model.SeatCell // both halves of a pair point at the owning cell
	quota    model.TicketQuota
	leases   map[model.SeatID]time.Time     // primary cell id -> earliest lease expiry of the cell
	pending  map[model.SeatID]pendingToggle // primary cell ids with a toggle in flight
	epoch    uint64
	loading  bool
	loadErr  error
	phase    phase
	deadline time.Time
	events   <-chan model.SeatEvent
}

// New constructs a session for the given user.  feed may be nil when live
// updates are unavailable; jrnl may be nil to disable journaling.  Call
// Run to start the actor and Close to stop it.
func New(userID string, api API, feed live.Feed, jrnl Journal, opts Options) *Session {
	if opts.LeaseDuration <= 0 {
		opts.LeaseDuration = 300 * time.Second
	}
	if opts.SafetyMargin < 0 {
		opts.SafetyMargin = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	origin := opts.Origin
	if origin == "" {
		origin = uuid.NewString()
	}
	s := &Session{
		id:       origin,
		userID:   userID,
		api:      api,
		feed:     feed,
		journal:  jrnl,
		opts:     opts,
		now:      now,
		cmds:     make(chan func(), 16),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
		store:    store.New(),
		cellByID: make(map[model.SeatID]model.SeatCell),
		quota:    model.TicketQuota{},
		leases:   make(map[model.SeatID]time.Time),
		pending:  make(map[model.SeatID]pendingToggle),
	}
	return s
}

// ID returns the session's origin id.
func (s *Session) ID() string { return s.id }

// Run executes the actor loop until Close is called.  Every store mutation
// in the whole module happens inside this loop.
func (s *Session) Run() {
	defer close(s.done)

	ticks := s.opts.Ticks
	if ticks == nil {
		interval := s.opts.TickInterval
		if interval <= 0 {
			interval = 800 * time.Millisecond
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		ticks = t.C
	}

	for {
		select {
		case <-s.closed:
			if s.feed != nil {
				s.feed.Leave()
			}
			return
		case fn := <-s.cmds:
			fn()
		case now := <-ticks:
			s.onTick(now)
		case ev, ok := <-s.events:
			if !ok {
				// feed died; keep serving the last known state
				s.events = nil
				continue
			}
			s.applyEvent(ev)
		}
	}
}

// Close stops the actor.  Outstanding backend calls are not cancelled –
// their completions find a closed session and are dropped; the backend's
// own hold expiry reclaims anything left behind.
func (s *Session) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	<-s.done
}

// do posts fn into the actor and waits until it ran.  fn must write
// exactly one value to reply before returning.
func (s *Session) do(ctx context.Context, fn func(reply chan<- error)) error {
	reply := make(chan error, 1)
	select {
	case s.cmds <- func() { fn(reply) }:
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers a completion closure unless the session is shutting down.
func (s *Session) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.closed:
	}
}

// SetTicketQuota sets the purchased ticket count for a category.  Lowering
// the quota below the number of chosen seats of that category – confirmed
// or with a hold still in flight – is rejected with ErrQuotaExceeded so the
// selection and the stepper can never contradict each other.
func (s *Session) SetTicketQuota(ctx context.Context, cat model.SeatCategory, count int) error {
	return s.do(ctx, func(reply chan<- error) {
		if count < 0 {
			count = 0
		}
		if s.store.MineCount(cat)+s.pendingHoldCount(cat) > count {
			reply <- ErrQuotaExceeded
			return
		}
		s.quota[cat] = count
		reply <- nil
	})
}

// applyEvent translates one live push event into store mutations.  Events
// for a showtime other than the active one are dropped silently (stale
// subscription guard), as are echoes of this session's own actions – the
// completion path already reconciled those.
func (s *Session) applyEvent(ev model.SeatEvent) {
	if ev.ShowtimeID != s.store.ShowtimeID() || s.loading {
		return
	}
	if ev.Origin != "" && ev.Origin == s.id {
		return
	}
	switch ev.Status {
	case model.StatusHeld:
		s.store.MarkHeld(ev.SeatID)
	case model.StatusReleased:
		s.store.MarkReleased(ev.SeatID)
	case model.StatusBooked:
		s.store.MarkBooked(ev.SeatID)
	default:
		log.Printf("seat-session: ignoring event with unknown status %q", ev.Status)
		return
	}
	// a released/booked event may have taken a seat out of the user's own
	// selection (duplicate tab, backend expiry); drop its lease and let the
	// countdown follow
	s.pruneLeases()
	s.recomputeCountdown()
}

// pruneLeases drops leases whose cell is no longer part of the selection.
func (s *Session) pruneLeases() {
	for id := range s.leases {
		if _, ok := s.store.MineCell(id); !ok {
			delete(s.leases, id)
		}
	}
}

// publish sends a journal entry in the background; failures only log.
func (s *Session) publish(kind journal.Kind, showtimeID uint64, ids []model.SeatID) {
	if s.journal == nil {
		return
	}
	seatIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		seatIDs = append(seatIDs, string(id))
	}
	entry := journal.Entry{
		Kind:       kind,
		SessionID:  s.id,
		UserID:     s.userID,
		ShowtimeID: showtimeID,
		SeatIDs:    seatIDs,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.journal.Publish(ctx, entry)
	}()
}
