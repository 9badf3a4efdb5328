package identity

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKey = "actor"

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromRequest(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Set(contextKey, actor)
		c.Next()
	}
}

// OptionalAuth sets the actor when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := actorFromRequest(c, secret); ok {
			c.Set(contextKey, actor)
		}
		c.Next()
	}
}

func actorFromRequest(c *gin.Context, secret string) (Actor, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return Actor{}, false
	}
	actor, err := ParseToken(secret, strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return Actor{}, false
	}
	return actor, true
}

// FromContext returns the authenticated actor, if any.
func FromContext(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// MustActor is for handlers behind RequireAuth.
func MustActor(c *gin.Context) Actor {
	actor, _ := FromContext(c)
	return actor
}
