package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathfinder-roadmap/internal/platform/ctxutil"
)

const headerUserID = "X-User-Id"

// AttachUser records the caller id from X-User-Id, or defaultUserID when the
// header is absent. There is no authentication; the id is only used for
// attribution in logs, events and stored roadmaps.
func AttachUser(defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			userID = defaultUserID
		}
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))
		c.Set("user_id", userID)
		c.Next()
	}
}

// UserID reads the id attached by AttachUser.
func UserID(c *gin.Context) string {
	return ctxutil.GetUserID(c.Request.Context())
}

// LimitBody caps request bodies at n bytes. n <= 0 disables the limit.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
