package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	idxModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
	}

	_, err := indexes.CreateMany(ctx, idxModels)
	if err != nil {
		log.Println("EnsureOrderIndexes:", err)
		return err
	}
	return nil
}

func EnsureProviderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("deliveryproviders").Indexes()

	idxModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "vehicleNumber", Value: 1}},
			Options: options.Index().SetName("vehicleNumber_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "availability", Value: 1}},
			Options: options.Index().SetName("status_availability"),
		},
	}

	_, err := indexes.CreateMany(ctx, idxModels)
	if err != nil {
		log.Println("EnsureProviderIndexes:", err)
		return err
	}
	return nil
}

func EnsureDeliveryIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("deliveries").Indexes()

	idxModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetName("orderId_index"),
		},
		{
			Keys:    bson.D{{Key: "deliveryProvider", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("provider_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "providerResponse", Value: 1}},
			Options: options.Index().SetName("providerResponse_index"),
		},
	}

	_, err := indexes.CreateMany(ctx, idxModels)
	if err != nil {
		log.Println("EnsureDeliveryIndexes:", err)
		return err
	}
	return nil
}

func EnsureAnalyticsIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(models.AnalyticsSessionsCollection).Indexes()

	sessionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetName("sessionId_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "startTime", Value: -1}, {Key: "isRegistered", Value: 1}},
			Options: options.Index().SetName("startTime_isRegistered"),
		},
		{
			Keys:    bson.D{{Key: "deviceId", Value: 1}, {Key: "startTime", Value: -1}},
			Options: options.Index().SetName("deviceId_startTime"),
		},
	}

	_, err := indexes.CreateMany(ctx, sessionIndexes)
	if err != nil {
		log.Println("EnsureAnalyticsIndexes:", err)
		return err
	}
	return nil
}

func EnsureSettingsIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("settings").Indexes()

	singletonIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "singleton", Value: 1}},
		Options: options.Index().SetName("singleton_unique").SetUnique(true),
	}

	_, err := indexes.CreateOne(ctx, singletonIndex)
	if err != nil {
		log.Println("EnsureSettingsIndexes:", err)
		return err
	}
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	idxModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_index"),
		},
	}

	_, err := indexes.CreateMany(ctx, idxModels)
	if err != nil {
		log.Println("EnsureProductIndexes:", err)
		return err
	}
	return nil
}

func EnsureBannerIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("banners").Indexes()

	activeOrderIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "active", Value: 1}, {Key: "order", Value: 1}},
		Options: options.Index().SetName("active_order"),
	}

	_, err := indexes.CreateOne(ctx, activeOrderIndex)
	if err != nil {
		log.Println("EnsureBannerIndexes:", err)
		return err
	}
	return nil
}
