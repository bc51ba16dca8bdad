// Package server provides shared middleware and input hygiene for the HTTP surface.
package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins []string // empty = allow all (*)
}

// CORSMiddlewareWithConfig adds CORS headers for the read-only API.
// With AllowedOrigins set, requests from other origins get no CORS headers and
// their preflights are refused.
func CORSMiddlewareWithConfig(cfg CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowedOrigin := "*"
		if len(cfg.AllowedOrigins) > 0 {
			if !slices.Contains(cfg.AllowedOrigins, origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			allowedOrigin = origin
			w.Header().Add("Vary", "Origin")
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
		w.Header().Set("Access-Control-Expose-Headers", "ETag, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SlowRequestThreshold is the duration above which TimingMiddleware warns.
var SlowRequestThreshold = 100 * time.Millisecond

// TimingMiddleware logs requests slower than SlowRequestThreshold.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if d := time.Since(start); d > SlowRequestThreshold {
			logging.WarnContext(r.Context(), "slow_request",
				"method", r.Method, "path", r.URL.Path, "duration_ms", d.Milliseconds())
		}
	})
}
