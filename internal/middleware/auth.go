package middleware

import (
	"errors"
	"net/http"
	"strings"

	"practice-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "userID"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func validateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Auth resolves the requesting user from a Bearer token, falling back to
// the X-User-ID header set by the API gateway.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if strings.HasPrefix(tokenString, "Bearer ") {
			tokenString = tokenString[7:]
		}

		if tokenString != "" {
			claims, err := validateJWT(tokenString)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   "Invalid or expired token",
				})
				c.Abort()
				return
			}
			c.Set(userIDKey, claims.UserID)
			c.Next()
			return
		}

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(userIDKey, userID)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Authentication required",
		})
		c.Abort()
	}
}

// UserID returns the authenticated user for the request, empty when the
// route skipped Auth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
