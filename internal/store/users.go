package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videohub/internal/models"
)

const (
	UsersCollection         = "users"
	SubscriptionsCollection = "subscriptions"
)

// publicProjection leaves out the password hash and the refresh token.
var publicProjection = bson.M{"password": 0, "refreshToken": 0}

type UserRepository struct {
	db *mongo.Database
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) users() *mongo.Collection {
	return r.db.Collection(UsersCollection)
}

func identifierFilter(username, email string) (bson.M, bool) {
	var or bson.A
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, false
	}
	return bson.M{"$or": or}, true
}

// FindByIdentifier returns the user whose username or email matches.
func (r *UserRepository) FindByIdentifier(ctx context.Context, username, email string) (*models.User, error) {
	filter, ok := identifierFilter(strings.ToLower(username), strings.ToLower(email))
	if !ok {
		return nil, ErrNotFound
	}

	var user models.User
	if err := r.users().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	if err := r.users().FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user already holds username or email.
func (r *UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	filter, ok := identifierFilter(strings.ToLower(username), strings.ToLower(email))
	if !ok {
		return false, nil
	}
	count, err := r.users().CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts user and fills in its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}

	res, err := r.users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = id
	return nil
}

type AccountUpdate struct {
	FullName string
	Email    string
	Username string
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id string, upd AccountUpdate) (*models.User, error) {
	set := bson.M{
		"fullname": upd.FullName,
		"email":    strings.ToLower(upd.Email),
	}
	if upd.Username != "" {
		set["username"] = strings.ToLower(upd.Username)
	}
	return r.updateAndReturn(ctx, id, set)
}

func (r *UserRepository) SetAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return r.updateAndReturn(ctx, id, bson.M{"avatar": url})
}

func (r *UserRepository) SetCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return r.updateAndReturn(ctx, id, bson.M{"coverImage": url})
}

func (r *UserRepository) updateAndReturn(ctx context.Context, id string, set bson.M) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(publicProjection)

	var user models.User
	err = r.users().FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.users().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ChannelProfile aggregates a channel's public fields with its subscriber
// counts. viewerID may be empty, in which case IsSubscribed is false.
func (r *UserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	var viewer any
	if oid, err := primitive.ObjectIDFromHex(viewerID); err == nil {
		viewer = oid
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": strings.ToLower(username)}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":          bson.M{"$size": "$subscribers"},
			"channelsSubscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"fullname":                  1,
			"username":                  1,
			"email":                     1,
			"avatar":                    1,
			"coverImage":                1,
			"subscribersCount":          1,
			"channelsSubscribedToCount": 1,
			"isSubscribed":              1,
		}}},
	}

	cursor, err := r.users().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}
