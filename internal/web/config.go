// Package web serves the JSON API and the live-search WebSocket over the
// in-memory corpus.
package web

import "time"

// Config holds server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string      // CORS and WebSocket origins (empty = allow all)
	RateLimitRequests int           // requests per minute per client IP (0 = disabled)
	RateLimitBurst    int           // bucket size; defaults to 10
	SearchCacheTTL    time.Duration // 0 disables the search cache
	SearchCacheSize   int           // maximum cached terms
	LiveMessageRate   int           // live-search messages per second per connection
	LiveMessageSize   int64         // maximum live-search message size in bytes
}

// DefaultConfig returns the settings used by `juniper-search serve`.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		RateLimitBurst:  10,
		SearchCacheTTL:  10 * time.Minute,
		SearchCacheSize: 512,
		LiveMessageRate: 20,
		LiveMessageSize: 4096,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = d.RateLimitBurst
	}
	if c.SearchCacheSize <= 0 {
		c.SearchCacheSize = d.SearchCacheSize
	}
	if c.LiveMessageRate <= 0 {
		c.LiveMessageRate = d.LiveMessageRate
	}
	if c.LiveMessageSize <= 0 {
		c.LiveMessageSize = d.LiveMessageSize
	}
	return c
}
