package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newRateLimitedEcho(t *testing.T, burst int, window time.Duration) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(RateLimitConfig{
		RedisClient: client,
		Limit:       rate.Limit(0),
		Burst:       burst,
		Window:      window,
	}))
	return e, mr
}

func hit(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	t.Parallel()
	e, _ := newRateLimitedEcho(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := hit(e, "/login")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	t.Parallel()
	e, _ := newRateLimitedEcho(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(e, "/login").Code)
	}

	rec := hit(e, "/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitResetsAfterWindow(t *testing.T) {
	t.Parallel()
	e, mr := newRateLimitedEcho(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, hit(e, "/login").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(e, "/login").Code)

	mr.FastForward(2 * time.Minute)

	assert.Equal(t, http.StatusOK, hit(e, "/login").Code)
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	t.Parallel()

	// Pointing at a closed port must not take the endpoint down.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(RateLimitConfig{
		RedisClient: client,
		Limit:       rate.Limit(0),
		Burst:       1,
		Window:      time.Minute,
	}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(e, "/login").Code)
	}
}
