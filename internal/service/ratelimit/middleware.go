package ratelimit

import (
	xhttp "BTCForecast/pkg/http"
	applogger "BTCForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests with 429 once the caller's bucket is empty.
// Callers are keyed by their real IP.
func Middleware(lim *Limiter, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if !lim.Allow(key) {
				l.Warn("rate limited",
					applogger.String("remote", key),
					applogger.String("path", c.Path()),
				)
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests"))
			}
			return next(c)
		}
	}
}
