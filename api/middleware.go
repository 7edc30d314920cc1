package api

import (
	"net/http"
	"strings"
	"time"

	"dailybet/domain/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Context keys set by the middleware
const (
	requestIDKey = "requestID"
	claimsKey    = "claims"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's header when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Cors allows the configured origins. allowed reports whether an origin may call the API.
func Cors(allowed func(origin string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request and reports it to recorder when set
func RequestLogger(recorder func(method, route string, status int, duration time.Duration)) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		status := c.Writer.Status()

		if recorder != nil {
			recorder(c.Request.Method, route, status, duration)
		}

		log.WithFields(log.Fields{
			"requestID": c.GetString(requestIDKey),
			"method":    c.Request.Method,
			"route":     route,
			"status":    status,
			"latency":   duration.String(),
			"clientIP":  c.ClientIP(),
		}).Debug("HTTP request")
	}
}

// RequireAuth verifies the bearer token and stores its claims
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			respondError(c, apperrors.Unauthorized("missing bearer token"))
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers without the admin claim. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			respondError(c, apperrors.Unauthorized("missing identity"))
			return
		}
		if !claims.IsAdmin {
			respondError(c, apperrors.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*Claims)
	return claims
}
