package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache.  The cache fronts the
// public discovery endpoints (categories, event listings, banners) and
// the admin stats dashboard, where a bounded staleness window is
// acceptable.  Caching is skipped entirely when Enabled is false or no
// Redis client could be constructed.
type CacheConfig struct {
	Enabled      bool            // master switch
	Methods      map[string]bool // HTTP methods eligible for caching
	TTL          time.Duration   // entry lifetime
	KeyStrategy  string          // which request parts form the cache key
	Prefix       string          // Redis key namespace
	MaxBodyBytes int             // largest response body worth caching
}

// LoadCacheConfig builds a CacheConfig from the environment.  Every
// variable has a default, so an empty environment yields a working
// 30-second GET cache.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          parseDur(getenv("CACHE_TTL", "30s")),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
