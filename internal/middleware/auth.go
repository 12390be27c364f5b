package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"videohub/internal/apperr"
	"videohub/internal/logging"
)

const (
	UserIDKey         = "userId"
	AccessTokenCookie = "accessToken"
)

type Authenticator interface {
	Authenticate(accessToken string) (string, error)
}

// AccessGuard accepts the access token from the accessToken cookie or an
// Authorization: Bearer header and stores its subject under UserIDKey.
func AccessGuard(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(accessToken(c))
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("access denied", "reason", err.Error())
			abortWithError(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logging.IntoContext(
			c.Request.Context(),
			logging.FromContext(c.Request.Context()).With("user_id", userID),
		))
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(v) != "" {
		return v
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Fields(raw)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// UserID returns the subject stored by AccessGuard.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func abortWithError(c *gin.Context, err error) {
	message := "Unauthorized request"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	status := apperr.HTTPStatus(apperr.KindOf(err))
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    message,
		"success":    false,
		"errors":     []string{},
	})
}
