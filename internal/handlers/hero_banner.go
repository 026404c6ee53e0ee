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

// GetHeroBanner returns the single active hero section, lazily created with
// sensible storefront defaults.
func GetHeroBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/hero-banner"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		heroes := db.Collection("herobanners")
		opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

		var hero models.HeroBanner
		err := heroes.FindOne(ctx, bson.M{"active": true}, opts).Decode(&hero)
		if err == mongo.ErrNoDocuments {
			now := time.Now()
			hero = models.HeroBanner{
				Badge: models.HeroBadge{
					Text:            "New Season",
					TextColor:       "#ffffff",
					BackgroundColor: "#2563eb",
				},
				Heading: models.HeroHeading{
					MainText:        "Shop the latest",
					HighlightedText: "deals",
					GradientFrom:    "#2563eb",
					GradientTo:      "#7c3aed",
				},
				Description:   "Discover our newest arrivals at great prices.",
				PrimaryButton: models.HeroButton{Text: "Shop Now", Link: "/products"},
				Active:        true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			res, insertErr := heroes.InsertOne(ctx, hero)
			if insertErr != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				hero.ID = id
			}
			c.JSON(http.StatusOK, hero)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, hero)
	}
}

// UpdateHeroBanner replaces the hero section content.
func UpdateHeroBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/hero-banner"
		defer handlePanic(c, route)

		var hero models.HeroBanner
		if err := c.ShouldBindJSON(&hero); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		heroes := db.Collection("herobanners")
		now := time.Now()

		var existing models.HeroBanner
		err := heroes.FindOne(ctx, bson.M{"active": true}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			hero.ID = primitive.NilObjectID
			hero.Active = true
			hero.CreatedAt = now
			hero.UpdatedAt = now
			res, insertErr := heroes.InsertOne(ctx, hero)
			if insertErr != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				hero.ID = id
			}
			c.JSON(http.StatusOK, hero)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		hero.ID = existing.ID
		hero.Active = true
		hero.CreatedAt = existing.CreatedAt
		hero.UpdatedAt = now

		_, err = heroes.ReplaceOne(ctx, bson.M{"_id": existing.ID}, hero)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, hero)
	}
}
