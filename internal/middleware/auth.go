package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/auth"
)

// RequirePlayerToken checks the Bearer token against the :id route param.
// The websocket route takes its token from the pt query instead, since
// browsers cannot set headers on the upgrade request.
func RequirePlayerToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing player token"})
			c.Abort()
			return
		}

		matchID := c.Param("id")
		if err := auth.Authorize(secret, token, matchID); err != nil {
			log.Printf("[AUTH] Rejected token for match %s: %v", matchID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid player token"})
			c.Abort()
			return
		}

		c.Set("match_id", matchID)
		c.Next()
	}
}
