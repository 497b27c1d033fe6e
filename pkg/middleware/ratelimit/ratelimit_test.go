package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterPerKeyBurst(t *testing.T) {
	now := time.Date(2024, 9, 9, 8, 0, 0, 0, time.UTC)
	l := New(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLimiterEvictsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 9, 9, 8, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(idleEviction + time.Minute)
	l.Allow("10.0.0.2")

	assert.Len(t, l.visitors, 1)
}

func TestLimiterSweepsAtMostOncePerInterval(t *testing.T) {
	start := time.Date(2024, 9, 9, 8, 0, 0, 0, time.UTC)
	now := start
	l := New(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = start.Add(idleEviction - 30*time.Second)
	l.Allow("10.0.0.2")

	now = start.Add(idleEviction + 10*time.Second)
	l.Allow("10.0.0.2")
	assert.Len(t, l.visitors, 2, "idle visitor survives until the next sweep is due")

	now = start.Add(idleEviction + 2*time.Minute)
	l.Allow("10.0.0.3")
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.Len(t, l.visitors, 2)
	assert.Equal(t, now, l.lastSweep)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/submissions", Middleware(New(0.001, 1)), func(c *gin.Context) { c.Status(http.StatusCreated) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/submissions", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/submissions", nil))

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "5", second.Header().Get("Retry-After"))
}

func TestMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/submissions", Middleware(New(0, 1)), func(c *gin.Context) { c.Status(http.StatusCreated) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submissions", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}
