package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/unibridge-backend/internal/observability"
)

// unrouted keeps scanner traffic from minting a label per path.
const unrouted = "unmatched"

// Metrics records request count and latency per route template. Health probes and
// scrapes are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/healthcheck", "/metrics":
			c.Next()
			return
		}

		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unrouted
		}
		status := c.Writer.Status()
		if status == http.StatusTooManyRequests {
			m.IncRateLimited("http")
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(status), time.Since(start))
	}
}
