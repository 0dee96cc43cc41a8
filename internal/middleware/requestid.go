package middleware

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID tags every request with a uuid, echoes it back in the
// X-Request-ID header and writes one access-log line per request so log
// output can be correlated under concurrent traffic.  An id supplied by the
// client (e.g. from an upstream proxy) is kept as-is.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the central error handler commit the response first
				// so the logged status is the one actually sent.
				c.Error(err)
			}
			log.Printf("%s %s %s -> %d (%s)",
				id, c.Request().Method, c.Request().URL.Path,
				c.Response().Status, time.Since(start).Round(time.Millisecond))
			return nil
		}
	}
}
