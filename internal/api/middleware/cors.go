package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSConfig lists the cross-origin rules sent with every response
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig allows the browser client to call the API from origins.
// No origins means any origin.
func DefaultCORSConfig(origins ...string) CORSConfig {
	return CORSConfig{
		AllowOrigins:  lo.Ternary(len(origins) == 0, []string{"*"}, origins),
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", requestIDHeader, EstimatedDurationHeader},
		ExposeHeaders: []string{requestIDHeader, "X-Total-Count", "Content-Disposition", UsageOutcomeHeader},
		MaxAge:        3600,
	}
}

// CORS applies config and answers preflight requests with 204
func CORS(config CORSConfig) gin.HandlerFunc {
	static := map[string]string{}
	if len(config.AllowMethods) > 0 {
		static["Access-Control-Allow-Methods"] = strings.Join(config.AllowMethods, ", ")
	}
	if len(config.AllowHeaders) > 0 {
		static["Access-Control-Allow-Headers"] = strings.Join(config.AllowHeaders, ", ")
	}
	if len(config.ExposeHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(config.ExposeHeaders, ", ")
	}
	if config.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}
	if config.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(config.MaxAge)
	}
	wildcard := lo.Contains(config.AllowOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(config.AllowOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		for k, v := range static {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
