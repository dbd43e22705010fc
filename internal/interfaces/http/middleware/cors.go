// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.Security.CORSAllowedMethods,
		AllowHeaders:     cfg.Security.CORSAllowedHeaders,
		ExposeHeaders:    []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           24 * time.Hour,
	}

	for _, origin := range cfg.Security.CORSAllowedOrigins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			corsConfig.AllowCredentials = false
		}
	}
	if !corsConfig.AllowAllOrigins {
		if len(cfg.Security.CORSAllowedOrigins) == 0 {
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = cfg.Security.CORSAllowedOrigins
		}
	}

	return cors.New(corsConfig)
}
