package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videohub/internal/store"
)

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	}
}

func subscriptionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "channel", Value: 1}},
			Options: options.Index().SetName("channel_index"),
		},
		{
			Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
			Options: options.Index().SetName("subscriber_channel_unique").SetUnique(true),
		},
	}
}

func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexes(ctx, db, store.UsersCollection, userIndexes())
}

func EnsureSubscriptionIndexes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexes(ctx, db, store.SubscriptionsCollection, subscriptionIndexes())
}

func ensureIndexes(ctx context.Context, db *mongo.Database, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l := slog.With("collection", collection)
	l.Debug("creating indexes", "count", len(models))
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		l.Error("index creation failed", "error", err)
		return err
	}
	l.Info("indexes ready", "names", names)
	return nil
}
