package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextIdentityKey = "identity"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(token string) (access.Identity, error)
}

// AuthMiddleware creates a Gin middleware for bearer token authentication.
func AuthMiddleware(verifier TokenVerifier, r errorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		id, err := verifier.VerifyToken(parts[1])
		if err != nil {
			r.fail(c, err)
			return
		}

		c.Set(ContextIdentityKey, id)
		c.Next()
	}
}

// RequireAction rejects callers whose role may never perform action, before
// the handler touches the store. Must run AFTER AuthMiddleware.
func RequireAction(action access.Action, r errorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.CheckRole(identityFrom(c), action).Err(); err != nil {
			r.fail(c, err)
			return
		}
		c.Next()
	}
}

// RoleMiddleware restricts a route to the given roles for routes whose path,
// not the action, decides who may call them. Must run AFTER AuthMiddleware.
func RoleMiddleware(r errorResponder, allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := identityFrom(c).Role
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		r.fail(c, domain.Forbidden(fmt.Sprintf("User role %s is not authorized to access this route", role)))
	}
}

// identityFrom returns the verified caller, or the zero Identity on public routes.
func identityFrom(c *gin.Context) access.Identity {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return access.Identity{}
	}
	id, _ := v.(access.Identity)
	return id
}

// RequestLogger logs one line per request once the handler chain has finished.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := identityFrom(c); id.UserID != "" {
			fields = append(fields, zap.String("user_id", id.UserID))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
