package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.  When
// Enabled is false or no Redis client is configured, caching is disabled.
// TTL defines the lifetime of cache entries.  Prefix namespaces all keys so
// that write handlers can invalidate them in one sweep.  MaxBodyBytes caps
// the size of responses that will be stored; larger bodies are passed through
// uncached.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads cache settings from the environment:
//   CACHE_ENABLED       – "true"/"1" to enable (default off)
//   CACHE_TTL_SECONDS   – entry lifetime in seconds (default 60)
//   CACHE_PREFIX        – key namespace (default "blogcache")
//   CACHE_MAX_BODY_KB   – max cached body size in KiB (default 256)
func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      false,
        TTL:          60 * time.Second,
        Prefix:       "blogcache",
        MaxBodyBytes: 256 << 10,
    }
    if v := os.Getenv("CACHE_ENABLED"); strings.EqualFold(v, "true") || v == "1" {
        cfg.Enabled = true
    }
    if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            cfg.TTL = time.Duration(n) * time.Second
        }
    }
    if v := os.Getenv("CACHE_PREFIX"); v != "" {
        cfg.Prefix = v
    }
    if v := os.Getenv("CACHE_MAX_BODY_KB"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            cfg.MaxBodyBytes = n << 10
        }
    }
    return cfg
}
