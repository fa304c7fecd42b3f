package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errMissingToken = errors.New("missing or invalid token")

// DefaultMaxBodyBytes caps request bodies; progress events are tiny.
const DefaultMaxBodyBytes int64 = 64 << 10

// AttachRequestContext bounds the request body before any handler reads it.
func AttachRequestContext(maxBodyBytes int64) gin.HandlerFunc {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Next()
	}
}
