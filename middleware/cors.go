package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origins. ORIGIN_URL takes a
// comma-separated list; without it only the local dev server may call the
// API.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigins := []string{"http://localhost:3000"}

	if originEnv := os.Getenv("ORIGIN_URL"); originEnv != "" {
		for _, origin := range strings.Split(originEnv, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
