package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"estore/internal/models"
)

type productRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Price          float64  `json:"price" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Brand          string   `json:"brand"`
	Stock          int      `json:"stock"`
	Images         []string `json:"images"`
	IsFeatured     bool     `json:"isFeatured"`
	Discount       float64  `json:"discount"`
	ContactNumber  string   `json:"contactNumber"`
	WhatsappNumber string   `json:"whatsappNumber"`
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		categoryID, err := primitive.ObjectIDFromHex(req.Category)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}
		if err := validateDiscountFields(req.Price, req.Discount); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": categoryID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusBadRequest, route, "category not found")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:           strings.TrimSpace(req.Name),
			Description:    req.Description,
			Price:          req.Price,
			Category:       categoryID,
			Brand:          req.Brand,
			Stock:          req.Stock,
			Images:         req.Images,
			Reviews:        []models.Review{},
			IsFeatured:     req.IsFeatured,
			Discount:       req.Discount,
			ContactNumber:  req.ContactNumber,
			WhatsappNumber: req.WhatsappNumber,
			ViewedBy:       []string{},
			LikedBy:        []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}
		product.InStock = product.Stock > 0

		c.JSON(http.StatusCreated, product)
	}
}

type productUpdateRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	Category       *string  `json:"category"`
	Brand          *string  `json:"brand"`
	Stock          *int     `json:"stock"`
	Images         []string `json:"images"`
	IsFeatured     *bool    `json:"isFeatured"`
	Discount       *float64 `json:"discount"`
	ContactNumber  *string  `json:"contactNumber"`
	WhatsappNumber *string  `json:"whatsappNumber"`
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
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

		resolved, err := resolveDiscountUpdate(product.Price, product.Discount, discountUpdateInput{
			Price:    req.Price,
			Discount: req.Discount,
		})
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		product.Price = resolved.Price
		product.Discount = resolved.Discount

		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Category != nil {
			categoryID, err := primitive.ObjectIDFromHex(*req.Category)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid category id")
				return
			}
			product.Category = categoryID
		}
		if req.Brand != nil {
			product.Brand = *req.Brand
		}
		if req.Stock != nil {
			product.Stock = *req.Stock
		}
		if req.Images != nil {
			product.Images = req.Images
		}
		if req.IsFeatured != nil {
			product.IsFeatured = *req.IsFeatured
		}
		if req.ContactNumber != nil {
			product.ContactNumber = *req.ContactNumber
		}
		if req.WhatsappNumber != nil {
			product.WhatsappNumber = *req.WhatsappNumber
		}
		product.UpdatedAt = time.Now()

		if err := saveProduct(ctx, db, product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product.InStock = product.Stock > 0

		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"

		productID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product removed"})
	}
}
