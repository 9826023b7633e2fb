package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// Use the route template so /tools/:id does not explode label cardinality
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, duration, reqSize, respSize)
	}
}

// Timer measures operation duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	service string
	tool    string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, service, tool string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		service: service,
		tool:    tool,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(status string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.RecordToolCall(t.service, t.tool, status, time.Since(t.start))
}
