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

func cacheCfg() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          10 * time.Second,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func searchContext(e *echo.Echo, method string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/v1/schedules?from=port-piraeus&to=port-paros", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/schedules")
	return c, rec
}

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"items":[],"total":0}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayload_Truncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 1, 2})
	assert.False(t, ok)
}

func TestCacheKey_VariesWithQuery(t *testing.T) {
	e := echo.New()
	cfg := cacheCfg()

	a, _ := searchContext(e, http.MethodGet)
	req := httptest.NewRequest(http.MethodGet, "/v1/schedules?from=port-naxos", nil)
	b := e.NewContext(req, httptest.NewRecorder())
	b.SetPath("/v1/schedules")

	assert.NotEqual(t, cacheKey(cfg, a), cacheKey(cfg, b))
}

func TestCache_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	cfg := cacheCfg()

	c, rec := searchContext(e, http.MethodGet)
	payload, err := encodePayload(http.StatusOK,
		http.Header{"Content-Type": []string{"application/json"}},
		[]byte(`{"items":[]}`))
	require.NoError(t, err)
	mock.ExpectGet(cacheKey(cfg, c)).SetVal(string(payload))

	nextCalled := false
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		nextCalled = true
		return c.String(http.StatusOK, "live")
	})

	require.NoError(t, h(c))
	assert.False(t, nextCalled, "a cache hit must not reach the handler")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, `{"items":[]}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_MissServesLive(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	cfg := cacheCfg()

	c, rec := searchContext(e, http.MethodGet)
	mock.ExpectGet(cacheKey(cfg, c)).RedisNil()

	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "live")
	})

	require.NoError(t, h(c))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "live", rec.Body.String())
}

func TestCache_SkipsUnconfiguredMethods(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()

	c, rec := searchContext(e, http.MethodPost)
	h := NewRedisCache(cacheCfg(), rdb)(func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_OversizedResponseNotStored(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	cfg := cacheCfg()
	cfg.MaxBodyBytes = 8

	c, rec := searchContext(e, http.MethodGet)
	key := cacheKey(cfg, c)
	mock.ExpectGet(key).RedisNil()
	// This expectation must stay unmet: the capture buffer is capped at
	// the limit, so storing here would cache a truncated body that every
	// later hit replays as corrupt JSON.
	mock.ExpectSetEx(key, "anything", cfg.TTL)

	const body = "12345678901234567890"
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	})

	require.NoError(t, h(c))
	assert.Equal(t, body, rec.Body.String(), "the client still gets the full response")
	assert.Error(t, mock.ExpectationsWereMet(), "an oversized response must not reach Redis")
}

func TestCache_DisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	c, rec := searchContext(e, http.MethodGet)

	h := NewRedisCache(cacheCfg(), nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "live")
	})

	require.NoError(t, h(c))
	assert.Equal(t, "live", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
