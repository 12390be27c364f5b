package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents the application user account.
// Password and RefreshToken never leave the server; use Public for responses.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullname" json:"fullname"`
	Avatar       string               `bson:"avatar" json:"avatar"`
	CoverImage   string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	PasswordHash string               `bson:"password" json:"-"`
	RefreshToken string               `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the outward view of a User.
type PublicUser struct {
	ID           string               `json:"_id"`
	Username     string               `json:"username"`
	Email        string               `json:"email"`
	FullName     string               `json:"fullname"`
	Avatar       string               `json:"avatar"`
	CoverImage   string               `json:"coverImage"`
	WatchHistory []primitive.ObjectID `json:"watchHistory"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	history := u.WatchHistory
	if history == nil {
		history = []primitive.ObjectID{}
	}
	return PublicUser{
		ID:           u.ID.Hex(),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
