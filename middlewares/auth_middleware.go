package middlewares

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware rejects requests without a valid bearer token and puts the
// caller's userID/username into the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, err := parseBearer(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set("userID", userID)
		c.Set("username", username)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is present
// but lets anonymous requests through. Used by the recommend endpoint, which
// records anonymous history rows with a NULL user.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, username, err := parseBearer(c); err == nil {
			c.Set("userID", userID)
			c.Set("username", username)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context) (uint, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, "", errors.New("Authorization header required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		return 0, "", errors.New("server misconfigured: JWT_SECRET not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid claims")
	}

	id, ok := claims["userId"].(float64)
	if !ok {
		return 0, "", errors.New("userId claim missing")
	}
	username, _ := claims["username"].(string)
	return uint(id), username, nil
}
