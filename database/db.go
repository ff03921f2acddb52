package database

import (
	"context"
	"time"

	"skybook/config"
	"skybook/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const dbName = "skybook"

var mongoDB *mongo.Database

// InitDB connects to MongoDB and verifies the primary is reachable. Bookings
// are the system of record, so startup halts if the database is down.
func InitDB() {
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.AppConfig.DatabaseURL).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal("mongodb primary unreachable", zap.Error(err))
	}

	mongoDB = client.Database(dbName)
	logger.Info("connected to mongodb", zap.String("database", dbName))
}

// DB returns the booking database handle. InitDB must have run first.
func DB() *mongo.Database {
	return mongoDB
}
