package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traffic-service/internal/auth"
	"traffic-service/internal/model"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
	principalContextKey = "principal"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authorizationHeader)
		if raw == "" {
			abort(c, http.StatusUnauthorized, "authorization header missing")
			return
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
			abort(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		claims, err := parser.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(principalContextKey, model.Principal{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		c.Next()
	}
}

// RequireOfficer lets only field officers through.
func RequireOfficer() gin.HandlerFunc {
	return requirePrincipal(model.Principal.IsOfficer)
}

// RequireAdmin lets every dashboard role through.
func RequireAdmin() gin.HandlerFunc {
	return requirePrincipal(model.Principal.IsAdmin)
}

func requirePrincipal(allowed func(model.Principal) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "principal missing")
			return
		}
		if !allowed(principal) {
			abort(c, http.StatusForbidden, "permission denied")
			return
		}
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}
	return principal, true
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}
