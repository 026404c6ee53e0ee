package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

// GetActiveBanners serves the storefront carousel: active banners inside
// their date window, in display order.
func GetActiveBanners(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/banners/active"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
		cursor, err := db.Collection("banners").Find(ctx, bson.M{"active": true}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		all := []models.Banner{}
		if err := cursor.All(ctx, &all); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		now := time.Now()
		visible := []models.Banner{}
		for _, banner := range all {
			if banner.VisibleAt(now) {
				visible = append(visible, banner)
			}
		}

		c.JSON(http.StatusOK, visible)
	}
}

func GetAllBanners(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/banners"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
		cursor, err := db.Collection("banners").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		banners := []models.Banner{}
		if err := cursor.All(ctx, &banners); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, banners)
	}
}

func CreateBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/banners"
		defer handlePanic(c, route)

		var banner models.Banner
		if err := c.ShouldBindJSON(&banner); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if banner.Title == "" || banner.Image == "" {
			respondWithError(c, http.StatusBadRequest, route, "title and image are required")
			return
		}

		now := time.Now()
		banner.ID = primitive.NilObjectID
		banner.CreatedAt = now
		banner.UpdatedAt = now

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("banners").InsertOne(ctx, banner)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			banner.ID = id
		}

		c.JSON(http.StatusCreated, banner)
	}
}

func UpdateBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/banners/:id"
		defer handlePanic(c, route)

		bannerID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var banner models.Banner
		if err := c.ShouldBindJSON(&banner); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Banner
		err = db.Collection("banners").FindOne(ctx, bson.M{"_id": bannerID}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "banner not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		banner.ID = bannerID
		banner.CreatedAt = existing.CreatedAt
		banner.UpdatedAt = time.Now()

		_, err = db.Collection("banners").ReplaceOne(ctx, bson.M{"_id": bannerID}, banner)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, banner)
	}
}

func DeleteBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/banners/:id"

		bannerID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("banners").DeleteOne(ctx, bson.M{"_id": bannerID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "banner not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "banner removed"})
	}
}
