package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// jwtSecret is resolved per use, not at package init, so a JWT_SECRET
// loaded from .env during startup is still honored.
func jwtSecret() []byte {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return []byte(val)
	}
	return []byte("supersecret") // fallback
}

// GenerateToken issues a bearer token for the given subject and role.
// There is no login flow in this service; tokens are minted out of band
// for the club's maintainers.
func GenerateToken(subject string, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// parseClaims validates the bearer token on the request. On failure the
// second return is the message for the 401 response.
func parseClaims(c *gin.Context) (jwt.MapClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "Missing or invalid Authorization header"
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "Invalid token claims"
	}
	return claims, ""
}

// RequireAuth ensures a valid JWT is present
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := parseClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set("subject", claims["sub"])
		c.Set("role", claims["role"])
		c.Next()
	}
}

// RequireAuthWithRole ensures the JWT is valid and carries a specific
// role. The claims are checked directly here, before c.Next(): invoking
// the RequireAuth closure inline would advance the handler chain and run
// the guarded endpoint before the role was ever inspected.
func RequireAuthWithRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := parseClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Set("subject", claims["sub"])
		c.Set("role", role)
		c.Next()
	}
}
