package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/config"
)

// setupLogging configures the global zerolog logger: JSON in production,
// console output otherwise.
func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// originChecker allows the configured CORS origins, or any origin when none
// are configured.
func originChecker(cfg *config.Config) func(origin string) bool {
	if len(cfg.CORSOrigins) == 0 {
		return func(string) bool { return true }
	}
	allowed := make(map[string]struct{}, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		allowed[o] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
}

// requestOriginChecker adapts an origin check for the websocket upgrader.
// Requests without an Origin header come from non-browser clients.
func requestOriginChecker(allow func(string) bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allow(origin)
	}
}
