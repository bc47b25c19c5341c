package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InvalidateOnWrite calls evict after every successful mutating request.
func InvalidateOnWrite(evict func(ctx context.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() < http.StatusBadRequest {
			evict(c.Request.Context())
		}
	}
}
