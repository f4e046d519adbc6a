package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration tunables

	"github.com/joho/godotenv" // optional .env autoload for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values identify the backend and the
// user; the hold tunables default to the product constants (300s selection
// window, 30s safety margin, 800ms countdown tick) and exist as variables
// because the backend is authoritative on lease length and deployments may
// tune the margin.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port the local gateway listens on
	BackendBaseURL string        // base URL of the booking backend REST API
	AccessToken    string        // the user's access token, forwarded on every backend call
	BackendTimeout time.Duration // per-request timeout for backend calls
	LeaseDuration  time.Duration // fallback selection window when no lease expiry is known
	SafetyMargin   time.Duration // subtracted from the server lease so the client reacts first
	TickInterval   time.Duration // countdown tick; must stay at or below one second
	LayoutCacheTTL time.Duration // lifetime of cached room layouts in Redis
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is applied first when
// present.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // absence of .env is fine; real env always wins

	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		BackendBaseURL: must("BACKEND_BASE_URL"),
		AccessToken:    must("ACCESS_TOKEN"),
		BackendTimeout: dur(getenv("BACKEND_TIMEOUT", "10s")),
		LeaseDuration:  dur(getenv("HOLD_LEASE_DURATION", "300s")),
		SafetyMargin:   dur(getenv("HOLD_SAFETY_MARGIN", "30s")),
		TickInterval:   dur(getenv("HOLD_TICK_INTERVAL", "800ms")),
		LayoutCacheTTL: dur(getenv("LAYOUT_CACHE_TTL", "5m")),
	}
	if cfg.TickInterval <= 0 || cfg.TickInterval > time.Second {
		log.Fatalf("HOLD_TICK_INTERVAL must be within (0, 1s], got %s", cfg.TickInterval)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or the given default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// dur parses a duration string, falling back to one second on bad input.
func dur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		// accept bare seconds too ("300" == "300s")
		if n, convErr := strconv.Atoi(s); convErr == nil {
			return time.Duration(n) * time.Second
		}
		return time.Second
	}
	return d
}
