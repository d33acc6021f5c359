package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

// Metrics records every request served by the gateway, labelled by route
// pattern so ids in the path do not explode label cardinality.
func Metrics(m *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveGatewayRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
