package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func parseToken(secret, tokenString string) (*claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return parsed, nil
}

// ValidateToken requires a valid bearer token and puts the caller's identity
// on the context.
func ValidateToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		parsed, err := parseToken(secret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("user_id", parsed.UserID)
		c.Set("role", parsed.Role)
		c.Next()
	}
}

// OptionalToken sets the caller's identity when a valid token is present and
// continues anonymously otherwise. Used by endpoints that degrade for guests.
func OptionalToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString != "" {
			if parsed, err := parseToken(secret, tokenString); err == nil {
				c.Set("user_id", parsed.UserID)
				c.Set("role", parsed.Role)
			}
		}
		c.Next()
	}
}

// RequireStaff gates endpoints on the moderator/admin capability. Must run
// after ValidateToken.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		r, ok := role.(models.Role)
		if !ok || !r.Staff() {
			c.JSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates endpoints on the admin capability. Must run after
// ValidateToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if r, ok := role.(models.Role); !ok || r != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
