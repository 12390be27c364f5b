package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"videohub/internal/models"
)

func TestIdentifierFilter(t *testing.T) {
	_, ok := identifierFilter("", "")
	assert.False(t, ok)

	filter, ok := identifierFilter("alice", "")
	require.True(t, ok)
	assert.Equal(t, bson.M{"$or": bson.A{bson.M{"username": "alice"}}}, filter)

	filter, ok = identifierFilter("alice", "alice@example.com")
	require.True(t, ok)
	assert.Len(t, filter["$or"], 2)
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	userID := primitive.NewObjectID()

	mt.Run("find by identifier", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: userID},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := NewUserRepository(mt.DB).FindByIdentifier(ctx, "Alice", "")
		require.NoError(mt, err)
		assert.Equal(mt, userID, user.ID)
		assert.Equal(mt, "hash", user.PasswordHash)
	})

	mt.Run("find by identifier not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).FindByIdentifier(ctx, "nobody", "")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by identifier without identifiers", func(mt *mtest.T) {
		_, err := NewUserRepository(mt.DB).FindByIdentifier(ctx, "", "")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by id with malformed id", func(mt *mtest.T) {
		_, err := NewUserRepository(mt.DB).FindByID(ctx, "xyz")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create sets id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Username: "alice", Email: "alice@example.com"}
		require.NoError(mt, NewUserRepository(mt.DB).Create(ctx, user))
		assert.False(mt, user.ID.IsZero())
		assert.False(mt, user.CreatedAt.IsZero())
		assert.NotNil(mt, user.WatchHistory)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := NewUserRepository(mt.DB).Create(ctx, &models.User{Username: "alice"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("set avatar returns updated user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: userID},
			{Key: "username", Value: "alice"},
			{Key: "avatar", Value: "https://cdn.example.com/a.png"},
		}}))

		user, err := NewUserRepository(mt.DB).SetAvatar(ctx, userID.Hex(), "https://cdn.example.com/a.png")
		require.NoError(mt, err)
		assert.Equal(mt, "https://cdn.example.com/a.png", user.Avatar)
	})

	mt.Run("set password hash unknown user", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))

		err := NewUserRepository(mt.DB).SetPasswordHash(ctx, userID.Hex(), "hash")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("channel profile", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: userID},
			{Key: "username", Value: "alice"},
			{Key: "fullname", Value: "Alice"},
			{Key: "subscribersCount", Value: int32(3)},
			{Key: "channelsSubscribedToCount", Value: int32(1)},
			{Key: "isSubscribed", Value: true},
		}))

		profile, err := NewUserRepository(mt.DB).ChannelProfile(ctx, "alice", primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.Equal(mt, 3, profile.SubscribersCount)
		assert.Equal(mt, 1, profile.ChannelsSubscribedToCount)
		assert.True(mt, profile.IsSubscribed)
	})

	mt.Run("channel profile not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).ChannelProfile(ctx, "ghost", "")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
