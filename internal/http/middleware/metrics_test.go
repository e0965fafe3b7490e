package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/observability"
)

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/universities/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/counsellor/chat", func(c *gin.Context) { c.Status(http.StatusTooManyRequests) })

	for _, path := range []string{"/api/universities/1", "/api/universities/2", "/healthcheck", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/counsellor/chat", nil))

	n, err := testutil.GatherAndCount(m.Registry(), "ub_api_requests_total")
	require.NoError(t, err)
	// One series per route template plus the unmatched bucket; the probe is skipped.
	assert.Equal(t, 3, n)

	n, err = testutil.GatherAndCount(m.Registry(), "ub_rate_limited_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetricsNilIsPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
