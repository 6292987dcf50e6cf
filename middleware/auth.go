package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/utils"
)

// extractToken looks for the JWT in the Authorization Bearer header, then the
// `token` query parameter, then the `jwt` cookie, in that order.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if token, err := c.Cookie("jwt"); err == nil {
		return token
	}
	return ""
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status: "error",
				Error:  "authentication required",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status: "error",
				Error:  "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Status: "error",
				Error:  "admin role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
