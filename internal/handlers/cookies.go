package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videohub/internal/auth"
	"videohub/internal/middleware"
)

const refreshTokenCookie = "refreshToken"

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	SameSite http.SameSite
	Secure   bool
}

func (cfg CookieConfig) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	}
}

func setSessionCookies(c *gin.Context, cfg CookieConfig, pair auth.Pair) {
	access := cfg.cookie(middleware.AccessTokenCookie, pair.Access.Value)
	access.Expires = pair.Access.ExpiresAt
	http.SetCookie(c.Writer, access)

	refresh := cfg.cookie(refreshTokenCookie, pair.Refresh.Value)
	refresh.Expires = pair.Refresh.ExpiresAt
	http.SetCookie(c.Writer, refresh)
}

func clearSessionCookies(c *gin.Context, cfg CookieConfig) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		ck := cfg.cookie(name, "")
		ck.MaxAge = -1
		http.SetCookie(c.Writer, ck)
	}
}
