package live

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seat-sync-client/internal/model"
)

// channelPrefix namespaces the per-showtime pub/sub rooms.  The backend
// publishes one JSON SeatEvent per message on seats.showtime.<id>.
const channelPrefix = "seats.showtime."

// RedisFeed implements Feed on top of Redis pub/sub.  One subscription is
// active at a time; Join replaces it.  Messages that fail to decode are
// logged and skipped so a single malformed publish cannot kill the feed.
type RedisFeed struct {
	rdb    *redis.Client
	sub    *redis.PubSub
	cancel context.CancelFunc
}

// NewRedisFeed returns a feed backed by the given client.  The client may
// not be nil – callers that could not reach Redis should not construct a
// feed at all and run without live updates instead.
func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	if rdb == nil {
		panic("nil redis client passed to NewRedisFeed")
	}
	return &RedisFeed{rdb: rdb}
}

// Join subscribes to the showtime's room and starts a goroutine pumping
// decoded events into the returned channel.  Any previous subscription is
// left first.  The returned channel is closed when the subscription ends.
func (f *RedisFeed) Join(ctx context.Context, showtimeID uint64) (<-chan model.SeatEvent, error) {
	f.Leave()

	sub := f.rdb.Subscribe(ctx, channelPrefix+strconv.FormatUint(showtimeID, 10))
	// force the SUBSCRIBE round-trip so a dead broker surfaces here, not
	// silently on the first missed event
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	f.sub = sub
	f.cancel = cancel

	out := make(chan model.SeatEvent, 64)
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-pumpCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.SeatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("live-feed: drop malformed event on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				case <-pumpCtx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Leave closes the active subscription, if any.  Idempotent.
func (f *RedisFeed) Leave() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.sub != nil {
		_ = f.sub.Close()
		f.sub = nil
	}
}
