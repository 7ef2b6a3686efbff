package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
)

const (
	ownerIDKey    = "ownerId"
	guestHeader   = "X-Guest-Id"
	guestQueryKey = "guest"
	maxGuestIDLen = 128
	ownerIDPrefix = "guest:"
)

// Identity resolves the visitor that owns the builder session. Browsers
// cannot set headers on WebSocket upgrades, so the guest query parameter is
// accepted as a fallback.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestHeader))
		if guestID == "" {
			guestID = strings.TrimSpace(c.Query(guestQueryKey))
		}
		if guestID == "" || len(guestID) > maxGuestIDLen {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(ownerIDKey, ownerIDPrefix+guestID)
		c.Next()
	}
}

// OwnerIDFromContext fetches the owner ID set by the Identity middleware.
func OwnerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(ownerIDKey)
}
