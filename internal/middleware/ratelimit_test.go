package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinjimenez/backend-paradeisos-ferrires/internal/config"
)

func limitCfg() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
}

func bookingContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings")
	return c, rec
}

func TestRateKey_ScopedByIPAndRoute(t *testing.T) {
	e := echo.New()
	c, _ := bookingContext(e)

	key := rateKey("rl", c)

	assert.Equal(t, "rl:ip:203.0.113.7:route:POST /v1/bookings", key)
}

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	cfg := limitCfg()
	cfg.Enabled = false
	c, rec := bookingContext(e)

	h := NewTokenBucket(cfg, nil)(func(c echo.Context) error {
		return c.String(http.StatusCreated, "booked")
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestTokenBucket_FailsOpenOnRedisError(t *testing.T) {
	// Bookings must not be blocked by limiter infrastructure trouble:
	// the mock client rejects the script call and the request proceeds.
	rdb, _ := redismock.NewClientMock()
	e := echo.New()
	c, rec := bookingContext(e)

	h := NewTokenBucket(limitCfg(), rdb)(func(c echo.Context) error {
		return c.String(http.StatusCreated, "booked")
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
