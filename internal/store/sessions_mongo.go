package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessions keeps the refresh token in the refreshToken field of the user
// document. Every write is a single-document update, so a swap is atomic.
type MongoSessions struct {
	users *mongo.Collection
}

func NewMongoSessions(db *mongo.Database) *MongoSessions {
	return &MongoSessions{users: db.Collection(UsersCollection)}
}

func (s *MongoSessions) RefreshToken(ctx context.Context, userID string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", nil
	}

	var doc struct {
		RefreshToken string `bson:"refreshToken"`
	}
	opts := options.FindOne().SetProjection(bson.M{"refreshToken": 1})
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return doc.RefreshToken, nil
}

func (s *MongoSessions) SetRefreshToken(ctx context.Context, userID, token string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoSessions) SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error) {
	if expected == "" {
		return false, nil
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, "refreshToken": expected},
		bson.M{"$set": bson.M{"refreshToken": next, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *MongoSessions) ClearRefreshToken(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	_, err = s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$unset": bson.M{"refreshToken": 1},
	})
	return err
}
