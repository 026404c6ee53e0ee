package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

const productPageSize = 12

/*
GET /api/products
- keyword search on name, case insensitive
- optional category filter
- fixed page size with page/pages/total envelope
*/
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s keyword=%s category=%s",
			route,
			c.Query("page"),
			c.Query("keyword"),
			c.Query("category"),
		)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{}

		if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
			filter["name"] = bson.M{"$regex": keyword, "$options": "i"}
		}
		if categoryStr := strings.TrimSpace(c.Query("category")); categoryStr != "" {
			categoryID, err := primitive.ObjectIDFromHex(categoryStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid category id")
				return
			}
			filter["category"] = categoryID
		}
		if c.Query("featured") == "true" {
			filter["isFeatured"] = true
		}

		page, _, err := parsePaginationParams(c.Query("page"), "")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		products := db.Collection("products")

		total, err := products.CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * productPageSize).
			SetLimit(productPageSize)

		cursor, err := products.Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		list := []models.Product{}
		if err := cursor.All(ctx, &list); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}
		for i := range list {
			list[i].InStock = list[i].Stock > 0
		}

		log.Printf("[%s] returning %d products", route, len(list))
		c.JSON(http.StatusOK, gin.H{
			"products": list,
			"page":     page,
			"pages":    int64(math.Ceil(float64(total) / float64(productPageSize))),
			"total":    total,
		})
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.InStock = product.Stock > 0

		c.JSON(http.StatusOK, product)
	}
}

/* =========================
   ENGAGEMENT COUNTERS
========================= */

// CountProductView counts at most one view per device fingerprint.
func CountProductView(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/view"

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			DeviceID string `json:"deviceId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "deviceId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := findProduct(ctx, db, productID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		counted := product.TrackView(req.DeviceID)
		if counted {
			product.UpdatedAt = time.Now()
			if err := saveProduct(ctx, db, product); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"counted": counted, "views": product.Views})
	}
}

// ToggleProductLike flips the device's like; the response carries the new
// state so the client can render without a refetch.
func ToggleProductLike(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/like"

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			DeviceID string `json:"deviceId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "deviceId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := findProduct(ctx, db, productID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		liked := product.ToggleLike(req.DeviceID)
		product.UpdatedAt = time.Now()
		if err := saveProduct(ctx, db, product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": product.Likes})
	}
}

/* =========================
   REVIEWS
========================= */

func CreateProductReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/reviews"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			Name    string `json:"name"`
			Rating  int    `json:"rating" binding:"required,min=1,max=5"`
			Comment string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := findProduct(ctx, db, productID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if product.HasReviewFrom(userID) {
			respondWithError(c, http.StatusBadRequest, route, "product already reviewed")
			return
		}

		now := time.Now()
		product.AddReview(models.Review{
			UserID:    userID,
			Name:      req.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: now,
		})
		product.UpdatedAt = now

		if err := saveProduct(ctx, db, product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":    "review added",
			"rating":     product.Rating,
			"numReviews": product.NumReviews,
		})
	}
}

func findProduct(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func saveProduct(ctx context.Context, db *mongo.Database, product *models.Product) error {
	_, err := db.Collection("products").ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	return err
}
