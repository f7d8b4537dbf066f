package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bankchen1/fo3-ledger-core/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// Headers populated by the platform gateway. Callers are authenticated
// upstream; by the time a request reaches this service the identity
// headers are trusted.
const (
	HeaderUserID        = "X-User-ID"
	HeaderSourceService = "X-Source-Service"
	HeaderSystemProcess = "X-System-Process"
)

const callerKey = contextKey("caller")

// ContextWithCaller returns a child context carrying the caller identity.
func ContextWithCaller(ctx context.Context, caller domain.CallerContext) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCallerFromCtx retrieves the caller identity from a standard context.
func GetCallerFromCtx(ctx context.Context) (domain.CallerContext, bool) {
	if ctx == nil {
		return domain.CallerContext{}, false
	}
	caller, ok := ctx.Value(callerKey).(domain.CallerContext)
	return caller, ok
}

// GetCallerFromContext retrieves the caller identity from the Gin context.
// It returns the caller and a boolean indicating if it was found.
func GetCallerFromContext(c *gin.Context) (domain.CallerContext, bool) {
	callerVal, exists := c.Get(string(callerKey))
	if !exists {
		// check the request context as well
		return GetCallerFromCtx(c.Request.Context())
	}

	caller, ok := callerVal.(domain.CallerContext)
	if !ok {
		// This should not happen if the middleware sets it correctly.
		return domain.CallerContext{}, false
	}
	return caller, true
}

// CallerContextMiddleware creates a Gin middleware handler that builds the
// caller identity from the gateway headers. Requests carrying neither a user
// ID nor a source service are rejected: an unidentified mutation would leave
// an unattributable audit trail.
func CallerContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		userID := c.GetHeader(HeaderUserID)
		sourceService := c.GetHeader(HeaderSourceService)
		isSystem, _ := strconv.ParseBool(c.GetHeader(HeaderSystemProcess))

		if userID == "" && sourceService == "" {
			logger.Warn("Request missing caller identity headers")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "caller identity required"})
			return
		}
		if userID == "" {
			// Machine-initiated call without an acting user.
			userID = "service:" + sourceService
		}

		caller := domain.CallerContext{
			UserID:          userID,
			SourceService:   sourceService,
			IsSystemProcess: isSystem,
			IPAddress:       c.ClientIP(),
			UserAgent:       c.Request.UserAgent(),
		}

		// Store in both the Gin context and the standard request context.
		c.Set(string(callerKey), caller)
		c.Request = c.Request.WithContext(ContextWithCaller(c.Request.Context(), caller))

		c.Next()
	}
}
