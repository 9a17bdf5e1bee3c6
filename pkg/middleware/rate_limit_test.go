package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(rps, burst))
	r.GET("/ready", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func hit(r http.Handler, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/ready", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := newRouter(10, 2)
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1:1234"))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.OpsRequestsThrottled)
	r := newRouter(0.5, 1)

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.2:1234"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.2:1234"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.OpsRequestsThrottled))

	// other clients have their own bucket
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.3:1234"))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	r := newRouter(0, 0)
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.0.0.4:1234"))
	}
}
