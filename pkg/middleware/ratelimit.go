package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Response mirrors the API error body.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// unlimitedPaths are probe endpoints scraped on a fixed interval.
var unlimitedPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// NewRateLimiterMiddleware limits requests per client IP. Non-positive limits
// fall back to 10 req/s with a burst of 30. Health and metrics probes are
// never limited.
func NewRateLimiterMiddleware(perSecond, burst int) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = 30
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return unlimitedPaths[c.Request().URL.Path]
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, Response{
				Code:    http.StatusForbidden,
				Message: "unable to identify client for rate limiting",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, Response{
				Code:    http.StatusTooManyRequests,
				Message: "rate limit exceeded, retry later",
			})
		},
	})
}
