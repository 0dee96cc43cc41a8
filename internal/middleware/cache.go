package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/blog-api/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.size < cw.limit {
		remain := cw.limit - cw.size
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key from route, query and the authenticated
// principal.  The user id is part of the key because the same route returns
// different rows for different principals; sharing entries across users
// would leak hidden posts.
func cacheKey(prefix string, c echo.Context) string {
	u := CurrentUser(c)
	tail := fmt.Sprintf("u:%d:route:%s:q:%s", u.ID, c.Path(), c.Request().URL.RawQuery)
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// cachePayloadHeaders clones h without the headers that must stay fresh on
// every response.  X-Request-ID in particular belongs to the request being
// served, not to the request that populated the cache; replaying a stored id
// would break log correlation.
func cachePayloadHeaders(h http.Header) http.Header {
	out := h.Clone()
	out.Del(echo.HeaderXRequestID)
	return out
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// Cache returns a middleware that serves successful GET responses from Redis
// for authenticated list routes.  Headers and body are stored together so a
// cache hit is byte-identical to the original response.  It must be
// registered after Auth, because the key depends on the principal.  When rdb
// is nil or the config disables caching it becomes a no-op.
func Cache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			bs, err := rdb.Get(ctx, key).Bytes()
			cancel()
			if err == nil {
				if status, header, body, ok := decodePayload(bs); ok {
					h := c.Response().Header()
					for k, vs := range header {
						// The replaying request already carries its own id.
						if k == http.CanonicalHeaderKey(echo.HeaderXRequestID) {
							continue
						}
						h[k] = vs
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(status, header.Get(echo.HeaderContentType), body)
				}
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}

			// Only complete 200 responses get cached.
			if cw.status == http.StatusOK && cw.size <= cw.limit {
				payload, perr := encodePayload(cw.status, cachePayloadHeaders(c.Response().Header()), cw.buf.Bytes())
				if perr == nil {
					sctx, scancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
					rdb.Set(sctx, key, payload, ttl)
					scancel()
				}
			}
			return nil
		}
	}
}

// InvalidateCache drops every cache entry under the prefix.  Write handlers
// call it after mutating posts so stale listings never outlive a change by
// more than the call itself.  Failures are ignored; the TTL bounds staleness
// anyway.
func InvalidateCache(ctx context.Context, rdb *redis.Client, prefix string) {
	if rdb == nil {
		return
	}
	iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		rdb.Del(ctx, iter.Val())
	}
}
