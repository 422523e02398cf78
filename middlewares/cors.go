package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows exactly allowedOrigins. An empty list allows no
// cross-origin callers.
func DefaultCORSConfig(allowedOrigins []string) *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// originAllowed reports whether origin may call the API and whether it was
// named explicitly. Only named origins get credentials.
func (cfg *CORSConfig) originAllowed(origin string) (allowed bool, named bool) {
	for _, candidate := range cfg.AllowedOrigins {
		if candidate == origin {
			return true, true
		}
		if candidate == "*" {
			allowed = true
		}
	}
	return allowed, false
}

// CORS echoes allowed origins so the site's islands can call the API with
// credentials, and answers preflight requests.
func CORS(cfg *CORSConfig) gin.HandlerFunc {
	if cfg == nil {
		cfg = DefaultCORSConfig(nil)
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed, named := cfg.originAllowed(origin)
		if origin != "" && allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			c.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			if cfg.AllowCredentials && named {
				c.Header("Access-Control-Allow-Credentials", "true")
			}

			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
		}

		c.Next()
	}
}
