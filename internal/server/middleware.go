package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stuverse/visavault/internal/models"
)

const userIDKey = "user_id"

// requireAuth resolves the bearer token to a user ID or rejects the
// request. The websocket route also accepts a token query parameter since
// browser websocket clients cannot set headers.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}

		userID, err := s.auth.Authenticate(token)
		if err != nil {
			apiError(c, http.StatusUnauthorized, models.ErrCodeAuth, "not authenticated")
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return header[len(prefix):]
	}
	return ""
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, &models.APIError{
		Code:       code,
		Message:    message,
		StatusCode: status,
	})
}
