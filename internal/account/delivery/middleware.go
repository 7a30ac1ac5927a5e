package delivery

import (
	"net/http"
	"strings"

	"github.com/ladoyle/simple-mail-bot/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer session token and stores the account
// email in the request context.
func AuthMiddleware(oauthUsecase usecase.OAuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		email, err := oauthUsecase.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("accountEmail", email)
		c.Next()
	}
}
