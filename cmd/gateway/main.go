package main // Entry point package

import (
	"log" // Logging library

	"github.com/google/uuid"      // session origin id
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/seat-sync-client/internal/auth"    // user identity from the access token
	"github.com/iliyamo/seat-sync-client/internal/backend" // REST client for the booking backend
	"github.com/iliyamo/seat-sync-client/internal/config"  // environment config loader
	"github.com/iliyamo/seat-sync-client/internal/handler" // gateway HTTP handlers
	"github.com/iliyamo/seat-sync-client/internal/journal" // fire-and-forget session journal
	"github.com/iliyamo/seat-sync-client/internal/live"    // live seat-event feed
	"github.com/iliyamo/seat-sync-client/internal/router"  // route registration
	"github.com/iliyamo/seat-sync-client/internal/session" // the coordination actor
)

func main() {
	cfg := config.Load()

	userID, err := auth.UserID(cfg.AccessToken)
	if err != nil {
		log.Fatalf("cannot determine user from access token: %v", err)
	}

	// one origin id shared by the backend client and the session, so the
	// session recognises its own events on the live channel
	origin := uuid.NewString()

	client := backend.New(cfg.BackendBaseURL, cfg.AccessToken, origin, cfg.BackendTimeout)

	// Redis carries the live feed and the layout cache; when it is down we
	// degrade to snapshot-only operation instead of failing startup
	rdb := config.NewRedisClient()
	var feed live.Feed
	if rdb != nil {
		feed = live.NewRedisFeed(rdb)
	} else {
		log.Printf("redis unavailable, running without live seat updates")
	}
	api := backend.NewCached(client, backend.NewLayoutCache(rdb, cfg.LayoutCacheTTL))

	sess := session.New(userID, api, feed, &journal.Publisher{}, session.Options{
		Origin:        origin,
		LeaseDuration: cfg.LeaseDuration,
		SafetyMargin:  cfg.SafetyMargin,
		TickInterval:  cfg.TickInterval,
	})
	go sess.Run()
	defer sess.Close()

	e := echo.New()
	router.RegisterRoutes(e, handler.NewSessionHandler(sess))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, user=%s)", addr, cfg.Env, userID)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
