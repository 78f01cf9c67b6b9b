package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/domo-app/domo-server/internal/util"
	"github.com/domo-app/domo-server/pkg/metrics"
	"github.com/domo-app/domo-server/pkg/trace"
)

const ctxUserID = "user_id"

// AuthMiddleware rejects requests without a valid bearer token and
// stores the authenticated user id on the gin context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// userID reads the authenticated user id the auth middleware stored.
func userID(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}

// TraceMiddleware propagates (or mints) the request trace ID and echoes
// it back on the response.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.Header)
		if traceID == "" {
			traceID = trace.NewID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.Header, traceID)
		c.Next()
	}
}

// MetricsMiddleware times every handled request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
