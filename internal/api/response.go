package api

import (
	"errors"
	"net/http"

	"alcyxob/fit-coach/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// retryAfterSeconds is advertised on 503 responses.
const retryAfterSeconds = "5"

// envelope is the uniform response body.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// respondList always renders data, even when empty, alongside its count.
func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

func respondMessage(c *gin.Context, status int, msg string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorResponder renders service errors. Causes of internal failures are
// logged and only echoed to the caller in development.
type errorResponder struct {
	log        *zap.Logger
	showDetail bool
}

func (r errorResponder) fail(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("Server error", err)
	}
	status := statusOf(de.Kind)
	body := envelope{Success: false, Message: de.Message}

	switch status {
	case http.StatusInternalServerError:
		r.log.Error("request failed",
			zap.String("method", c.Request.Method), zap.String("path", c.FullPath()), zap.Error(err))
		if r.showDetail && de.Err != nil {
			body.Error = de.Err.Error()
		}
	case http.StatusServiceUnavailable:
		r.log.Warn("request rejected, store unavailable",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.Header("Retry-After", retryAfterSeconds)
	}
	c.AbortWithStatusJSON(status, body)
}

// abortWithError mirrors fail for middleware that has no service error at hand.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, envelope{Success: false, Message: message})
}
