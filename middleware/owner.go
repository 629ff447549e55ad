package middleware

import (
	"strings"

	"autofill-platform/utils"

	"github.com/gin-gonic/gin"
)

const OwnerIDHeader = "X-Owner-ID"

// OwnerScope requires every request to carry an owner identifier.
// All document and chunk access downstream is filtered by it.
func OwnerScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := strings.TrimSpace(c.GetHeader(OwnerIDHeader))
		if ownerID == "" {
			utils.RespondWithBadRequest(c, "X-Owner-ID header is required", nil)
			c.Abort()
			return
		}

		c.Set("owner_id", ownerID)
		c.Next()
	}
}

// GetOwnerID retrieves the owner ID from context
func GetOwnerID(c *gin.Context) string {
	if id, exists := c.Get("owner_id"); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}
