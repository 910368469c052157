package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookbar/internal/stream"
)

// DefaultSnapshotTimeout covers one remote catalog round trip.
const DefaultSnapshotTimeout = 70 * time.Second

// sseHeartbeatInterval keeps idle event streams open through proxies.
var sseHeartbeatInterval = 30 * time.Second

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondValidationError sends a 400 with per-field details.
func respondValidationError(c *gin.Context, errs []ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Code:    "validation_error",
		Details: errs,
	})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseISBNParam reads and validates the isbn13 path parameter.
// Responds with a 400 error and returns "", false when it is malformed.
func parseISBNParam(c *gin.Context, paramName string) (string, bool) {
	isbn := c.Param(paramName)
	if !isISBN13(isbn) {
		respondBadRequest(c, "invalid "+paramName)
		return "", false
	}
	return isbn, true
}

// parseQueryInt reads a non-negative integer query parameter, falling back
// to def when it is absent.
func parseQueryInt(c *gin.Context, paramName string, def int) (int, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return n, true
}

// --- Read models ---

// snapshot waits for the first settled emission of s. On failure it writes
// the error response and returns false.
func snapshot[T any](c *gin.Context, timeout time.Duration, s *stream.Stream[T], settled func(T) bool) (T, bool) {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	v, err := stream.Settle(ctx, s, settled)
	if err != nil {
		var zero T
		if errors.Is(err, context.DeadlineExceeded) {
			respondError(c, http.StatusGatewayTimeout, "timed out waiting for data")
			return zero, false
		}
		respondInternalError(c, err, "snapshot")
		return zero, false
	}
	return v, true
}

// streamEvents forwards every emission of s as a server-sent event named
// event until the stream ends or the client goes away.
func streamEvents[T any](c *gin.Context, s *stream.Stream[T], event string) {
	defer s.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case v, ok := <-s.C():
			if !ok {
				<-s.Done()
				if err := s.Err(); err != nil {
					log.Printf("Stream %s ended: %v", event, err)
					c.SSEvent("error", ErrorResponse{Error: "stream ended"})
				}
				return false
			}
			c.SSEvent(event, v)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"time": t.UTC().Format(time.RFC3339)})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
