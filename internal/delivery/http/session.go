package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "session_id"
	sessionContextKey = "session_id"
)

type SessionConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SessionMiddleware выдает непрозрачный session_id, если клиент пришел без него.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookieName, sessionID, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		}
		c.Set(sessionContextKey, sessionID)
		c.Next()
	}
}

// SessionID возвращает идентификатор сессии, выставленный SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
