package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"site_blocker/internal/models"
	"site_blocker/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerAPIKey      = "X-API-Key"
	headerAuth        = "Authorization"
	bearerPrefix      = "Bearer "
	unauthorizedError = "Unauthorized"
)

// APIKeyAuth guards the control API with static keys. With no keys
// configured every request passes; the API only listens on loopback.
type APIKeyAuth struct {
	apiKeys [][]byte
}

// NewAPIKeyAuth creates a new API key authentication middleware.
func NewAPIKeyAuth(apiKeys []string) *APIKeyAuth {
	keys := make([][]byte, 0, len(apiKeys))
	for _, key := range apiKeys {
		if key != "" {
			keys = append(keys, []byte(key))
		}
	}
	return &APIKeyAuth{apiKeys: keys}
}

// Handler returns the gin middleware. Keys are read from the X-API-Key
// header, then from Authorization: Bearer <key>.
func (a *APIKeyAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.apiKeys) == 0 {
			c.Next()
			return
		}

		if !a.isValidAPIKey(a.extractAPIKey(c)) {
			logger.Log.Warn("unauthorized request - invalid or missing API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("clientIp", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:    http.StatusUnauthorized,
				Error:     unauthorizedError,
				Message:   "missing or invalid API key",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		c.Next()
	}
}

func (a *APIKeyAuth) extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader(headerAPIKey); key != "" {
		return key
	}
	if auth := c.GetHeader(headerAuth); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}
	return ""
}

func (a *APIKeyAuth) isValidAPIKey(key string) bool {
	if key == "" {
		return false
	}
	valid := false
	for _, k := range a.apiKeys {
		if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
			valid = true
		}
	}
	return valid
}
