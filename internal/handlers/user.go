package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"videohub/internal/middleware"
	"videohub/internal/models"
	"videohub/internal/profile"
)

type ProfileService interface {
	Register(ctx context.Context, in profile.RegisterInput) (models.PublicUser, error)
	CurrentUser(ctx context.Context, userID string) (models.PublicUser, error)
	UpdateAccount(ctx context.Context, userID string, in profile.AccountInput) (models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID, localPath string) (models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID, localPath string) (models.PublicUser, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
}

type UpdateAccountRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
}

// Register accepts multipart form fields plus an avatar file (required) and
// an optional coverImage file.
func Register(svc ProfileService, stager Stager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := parseMultipart(c); err != nil {
			respondError(c, "register", err)
			return
		}

		avatarPath, err := stageFormFile(c, stager, "avatar")
		if err != nil {
			respondError(c, "register", err)
			return
		}
		coverPath, err := stageFormFile(c, stager, "coverImage")
		if err != nil {
			discardStaged(avatarPath)
			respondError(c, "register", err)
			return
		}

		user, err := svc.Register(c.Request.Context(), profile.RegisterInput{
			Username:       c.PostForm("username"),
			Email:          c.PostForm("email"),
			FullName:       c.PostForm("fullname"),
			Password:       c.PostForm("password"),
			AvatarPath:     avatarPath,
			CoverImagePath: coverPath,
		})
		if err != nil {
			respondError(c, "register", err)
			return
		}
		respond(c, http.StatusCreated, user, "User registered Successfully")
	}
}

func CurrentUser(svc ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.CurrentUser(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, "current_user", err)
			return
		}
		respond(c, http.StatusOK, user, "User fetched successfully")
	}
}

func UpdateAccount(svc ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, "update_account", err)
			return
		}

		user, err := svc.UpdateAccount(c.Request.Context(), middleware.UserID(c), profile.AccountInput{
			FullName: req.FullName,
			Email:    req.Email,
			Username: req.Username,
		})
		if err != nil {
			respondError(c, "update_account", err)
			return
		}
		respond(c, http.StatusOK, user, "Account details updated successfully")
	}
}

type imageUpdate func(ctx context.Context, userID, localPath string) (models.PublicUser, error)

func updateImage(route, field, message string, stager Stager, update imageUpdate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := parseMultipart(c); err != nil {
			respondError(c, route, err)
			return
		}
		localPath, err := stageFormFile(c, stager, field)
		if err != nil {
			respondError(c, route, err)
			return
		}

		user, err := update(c.Request.Context(), middleware.UserID(c), localPath)
		if err != nil {
			respondError(c, route, err)
			return
		}
		respond(c, http.StatusOK, user, message)
	}
}

func UpdateAvatar(svc ProfileService, stager Stager) gin.HandlerFunc {
	return updateImage("update_avatar", "avatar", "Avatar image updated successfully", stager, svc.UpdateAvatar)
}

func UpdateCoverImage(svc ProfileService, stager Stager) gin.HandlerFunc {
	return updateImage("update_cover_image", "coverImage", "Cover image updated successfully", stager, svc.UpdateCoverImage)
}

func ChannelProfile(svc ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		channel, err := svc.ChannelProfile(c.Request.Context(), c.Param("username"), middleware.UserID(c))
		if err != nil {
			respondError(c, "channel_profile", err)
			return
		}
		respond(c, http.StatusOK, channel, "User channel fetched successfully")
	}
}
