package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/fer/internal/domain"
)

const headerName = "X-API-Key"

// APIKeyMiddleware validates the API key from the X-API-Key header, or from
// an "Authorization: Bearer" header when X-API-Key is absent.
// If apiKey is empty, authentication is disabled.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := extractKey(c)
		if provided == "" {
			abort(c, domain.ErrUnauthorized)
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			abort(c, domain.ErrForbidden)
			return
		}

		c.Next()
	}
}

func extractKey(c *gin.Context) string {
	if key := c.GetHeader(headerName); key != "" {
		return key
	}
	const prefix = "Bearer "
	if h := c.GetHeader("Authorization"); len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func abort(c *gin.Context, err *domain.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, gin.H{
		"code":    err.Code,
		"message": err.Message,
	})
}
