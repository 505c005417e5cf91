package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdminKey закрывает админские эндпоинты общим секретом в query
// параметре ?key=. Пустой настроенный ключ выключает проверку целиком -
// киоск в закрытой сети часто гоняют без аутентификации.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.Next()
			return
		}

		supplied := c.Query("key")
		if supplied == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_admin_key",
				"message": "Add ?key=<admin key> to the request URL",
			})
			c.Abort()
			return
		}

		// Сравнение за константное время
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(adminKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_admin_key",
				"message": "Admin key does not match, check ?key=",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
