// Package middleware provides gin middleware for the dashboard gateway.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

// DefaultBodyLimit bounds record payloads sent to the gateway.
const DefaultBodyLimit = 1 << 20

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		// Streaming bodies without a Content-Length fail on read instead.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
