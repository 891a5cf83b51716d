package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"chat-presence/internal/presence"
)

// identityKey is where the resolved caller identity lives in the gin
// context.
const identityKey = "identity"

// AuthMiddleware turns an already-issued JWT into a structured
// CallerIdentity. This is the boundary of the authentication
// collaborator: nothing past it parses claims.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// RequireAuth authenticates HTTP requests via the Authorization header.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		am.authenticate(c, strings.Replace(authHeader, "Bearer ", "", 1))
	}
}

// WSAuth authenticates WebSocket upgrade requests. Browsers cannot set
// headers on WebSocket connections, so the token arrives as a query
// parameter instead.
func (am *AuthMiddleware) WSAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}

		am.authenticate(c, strings.Replace(tokenString, "Bearer ", "", 1))
	}
}

// RequireAdmin guards reporting endpoints. It must run after
// RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := IdentityFromContext(c)
		if !ok || !caller.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context, tokenString string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(am.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
		return
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject in token"})
		return
	}

	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	c.Set(identityKey, presence.CallerIdentity{
		UserID:      userID,
		DisplayName: name,
		Role:        presence.Role(role),
	})
	c.Next()
}

// IdentityFromContext returns the caller identity resolved by the auth
// middleware.
func IdentityFromContext(c *gin.Context) (presence.CallerIdentity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return presence.CallerIdentity{}, false
	}
	caller, ok := value.(presence.CallerIdentity)
	return caller, ok
}
