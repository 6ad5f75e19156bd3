package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the per-IP rate limiter
// guarding the auth endpoints.
type RateLimitConfig struct {
	RedisClient *redis.Client
	Limit       rate.Limit
	Burst       int
	Window      time.Duration
}

// RateLimit counts requests per client IP and path in redis over a
// sliding window and rejects with 429 once the budget is spent.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	maxRequests := cfg.Burst + int(float64(cfg.Limit)*cfg.Window.Seconds())

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("rate_limit:%s:%s", c.RealIP(), c.Path())

			pipe := cfg.RedisClient.Pipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, cfg.Window)
			if _, err := pipe.Exec(ctx); err != nil {
				// Rate limiting is advisory; don't take the API down
				// with redis.
				return next(c)
			}

			count := int(incr.Val())
			remaining := maxRequests - count
			if remaining < 0 {
				remaining = 0
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > maxRequests {
				ttl, err := cfg.RedisClient.TTL(ctx, key).Result()
				if err == nil && ttl > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
