package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"videohub/internal/auth"
	"videohub/internal/middleware"
)

type AuthService interface {
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	Refresh(ctx context.Context, presented string) (auth.Pair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func Login(svc AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "login", err)
			return
		}

		res, err := svc.Login(c.Request.Context(), auth.LoginInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondError(c, "login", err)
			return
		}

		setSessionCookies(c, cookies, res.Pair)
		respond(c, http.StatusOK, gin.H{
			"user":         res.User,
			"accessToken":  res.Pair.Access.Value,
			"refreshToken": res.Pair.Refresh.Value,
		}, "User logged In Successfully")
	}
}

func Logout(svc AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), middleware.UserID(c)); err != nil {
			respondError(c, "logout", err)
			return
		}

		clearSessionCookies(c, cookies)
		respond(c, http.StatusOK, nil, "User logged Out")
	}
}

// Refresh reads the refresh token from its cookie, falling back to the
// refreshToken field of a JSON body.
func Refresh(svc AuthService, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, err := c.Cookie(refreshTokenCookie)
		if err != nil || strings.TrimSpace(presented) == "" {
			var req RefreshRequest
			if c.Request.ContentLength != 0 {
				_ = c.ShouldBindJSON(&req)
			}
			presented = req.RefreshToken
		}

		pair, err := svc.Refresh(c.Request.Context(), presented)
		if err != nil {
			respondError(c, "refresh", err)
			return
		}

		setSessionCookies(c, cookies, pair)
		respond(c, http.StatusOK, gin.H{
			"accessToken":  pair.Access.Value,
			"refreshToken": pair.Refresh.Value,
		}, "Access token refreshed")
	}
}

func ChangePassword(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "change_password", err)
			return
		}

		if err := svc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.OldPassword, req.NewPassword); err != nil {
			respondError(c, "change_password", err)
			return
		}
		respond(c, http.StatusOK, nil, "Password changed successfully")
	}
}
