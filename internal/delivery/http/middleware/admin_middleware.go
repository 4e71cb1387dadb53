package middleware

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// Admin capability headers. There is no authentication behind them; a
// gateway in front of the service is expected to strip or set them.
const (
	AdminHeader     = "X-ADMIN"
	AdminUserHeader = "X-ADMIN-USER"
)

const actorKey = "actor"

// AdminIdentity resolves the caller identity from request headers
func AdminIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := domain.Actor{Admin: strings.TrimSpace(c.GetHeader(AdminHeader)) == "1"}
		if actor.Admin {
			actor.Identity = truncateHeader(strings.TrimSpace(c.GetHeader(AdminUserHeader)), 255)
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the caller identity set by AdminIdentity
func ActorFrom(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	actor, _ := v.(domain.Actor)
	return actor
}

// RequireAdmin rejects callers without the admin capability and records admin access
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		event := security.AuditEvent{
			Event:     security.EventAdminAccess,
			Actor:     actor.Identity,
			IP:        c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RequestID: c.GetString(response.RequestIDKey),
		}
		if !actor.Admin {
			event.Event = security.EventAdminDenied
			security.DefaultLogger().Log(event)
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		security.DefaultLogger().Log(event)
		c.Next()
	}
}

// truncateHeader caps s at max characters; the identity column counts runes, not bytes
func truncateHeader(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
