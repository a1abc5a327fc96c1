package api

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chefrelay/internal/journal"
)

// Context keys shared between handlers and middleware.
const (
	requestIDKey = "request_id"
	profileKey   = "profile"
	errorKindKey = "error_kind"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const journalTimeout = 2 * time.Second

// validRequestID matches caller-supplied ids that are safe to echo and log.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9-]{1,128}$`)

// RequestID assigns every request an id, reusing the caller's when it is
// well formed.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.Info("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Recovery turns a panic into a 500 JSON response.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		logger.Error("panic recovered",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Any("panic", rec),
		)
		c.Set(errorKindKey, KindInternal)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// Journal records the outcome of every request routed through it. Failures to
// record are logged and never change the response.
func Journal(rec journal.Recorder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := journal.Entry{
			RequestID:  c.GetString(requestIDKey),
			Route:      c.FullPath(),
			Profile:    c.GetString(profileKey),
			Status:     c.Writer.Status(),
			ErrorKind:  c.GetString(errorKindKey),
			DurationMS: time.Since(start).Milliseconds(),
			CreatedAt:  start.UTC(),
		}
		if entry.Route == "" {
			entry.Route = c.Request.URL.Path
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), journalTimeout)
		defer cancel()
		if err := rec.Record(ctx, entry); err != nil {
			logger.Warn("failed to record request",
				zap.String("request_id", entry.RequestID),
				zap.Error(err),
			)
		}
	}
}
