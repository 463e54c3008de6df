package db

import (
	"context"

	"kanban/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to uri, pings the primary and returns the named
// database. Failure is fatal.
func ConnectMongo(uri, database string) (*mongo.Client, *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal("failed to ping mongodb", "error", err)
	}

	logger.Info("database connected", "driver", "mongo", "database", database)
	return client, client.Database(database)
}
