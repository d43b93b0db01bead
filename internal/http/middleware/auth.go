package middleware

import (
	"net/http"
	"strings"

	"busgo/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userKey     = "auth_user"
	userRoleKey = "userRole"
)

// TokenParser turns a bearer token into the caller it identifies.
type TokenParser interface {
	Parse(token string) (domain.RequestContext, error)
}

// Auth reads an optional bearer token. Invalid tokens are rejected;
// missing ones leave the request anonymous.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" || parser == nil {
			abortAuth(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		rc, err := parser.Parse(strings.TrimSpace(token))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(userKey, rc)
		c.Set(userRoleKey, rc.Role)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).UserID <= 0 {
			abortAuth(c, http.StatusUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

// RequireRoles only lets through callers whose role is in allowedRoles.
// Auth must run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			abortAuth(c, http.StatusForbidden, "role not allowed")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or a zero context.
func CurrentUser(c *gin.Context) domain.RequestContext {
	if c == nil {
		return domain.RequestContext{}
	}
	if v, ok := c.Get(userKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{}
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}
