package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"estore/internal/cache"
	"estore/internal/config"
	"estore/internal/models"
)

const settingsCacheKey = "settings:singleton"

// settingSections maps a PATCHable section name to the fields it owns.
// Anything outside the section's list is silently dropped from the update.
var settingSections = map[string][]string{
	"general":       {"siteName", "siteEmail", "currency", "timezone", "language"},
	"email":         {"smtpHost", "smtpPort", "smtpUsername", "smtpPassword", "emailFromName", "emailFromAddress"},
	"payment":       {"stripeEnabled", "stripePublishableKey", "stripeSecretKey", "paypalEnabled", "paypalClientId", "paypalClientSecret", "bankName", "bankAccountName", "bankAccountNumber", "bankBranchCode", "bankAccountType", "bankSwiftCode", "bankReference"},
	"security":      {"twoFactorAuth", "maintenanceMode", "maintenanceMessage"},
	"notifications": {"orderNotifications", "lowStockAlerts", "lowStockThreshold", "reviewNotifications"},
	"features":      {"enableReviews", "enableWishlist", "enableGuestCheckout"},
	"seo":           {"metaTitle", "metaDescription", "metaKeywords"},
	"social":        {"facebookUrl", "twitterUrl", "instagramUrl", "linkedinUrl"},
}

// filterSectionFields keeps only the keys a section owns.
func filterSectionFields(section string, body map[string]interface{}) (map[string]interface{}, bool) {
	allowed, ok := settingSections[section]
	if !ok {
		return nil, false
	}
	filtered := map[string]interface{}{}
	for _, field := range allowed {
		if value, exists := body[field]; exists {
			filtered[field] = value
		}
	}
	return filtered, true
}

// publicSettingsView strips operational secrets from the storefront response.
// Bank details stay visible so EFT customers can pay.
func publicSettingsView(s models.Settings) gin.H {
	return gin.H{
		"siteName":            s.SiteName,
		"siteEmail":           s.SiteEmail,
		"currency":            s.Currency,
		"timezone":            s.Timezone,
		"language":            s.Language,
		"maintenanceMode":     s.MaintenanceMode,
		"maintenanceMessage":  s.MaintenanceMessage,
		"enableReviews":       s.EnableReviews,
		"enableWishlist":      s.EnableWishlist,
		"enableGuestCheckout": s.EnableGuestCheckout,
		"metaTitle":           s.MetaTitle,
		"metaDescription":     s.MetaDescription,
		"metaKeywords":        s.MetaKeywords,
		"facebookUrl":         s.FacebookURL,
		"twitterUrl":          s.TwitterURL,
		"instagramUrl":        s.InstagramURL,
		"linkedinUrl":         s.LinkedInURL,
		"bankName":            s.BankName,
		"bankAccountName":     s.BankAccountName,
		"bankAccountNumber":   s.BankAccountNumber,
		"bankBranchCode":      s.BankBranchCode,
		"bankAccountType":     s.BankAccountType,
		"bankSwiftCode":       s.BankSwiftCode,
		"bankReference":       s.BankReference,
	}
}

// loadSettings returns the singleton, creating it from defaults when absent.
func loadSettings(ctx context.Context, db *mongo.Database) (models.Settings, error) {
	var settings models.Settings
	if cache.GetJSON(ctx, settingsCacheKey, &settings) {
		return settings, nil
	}

	err := db.Collection("settings").FindOne(ctx, bson.M{"singleton": models.SettingsSingletonKey}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		settings = models.DefaultSettings(time.Now())
		res, insertErr := db.Collection("settings").InsertOne(ctx, settings)
		if insertErr != nil {
			// Concurrent first access can race on the unique index; re-read.
			if mongo.IsDuplicateKeyError(insertErr) {
				err = db.Collection("settings").FindOne(ctx, bson.M{"singleton": models.SettingsSingletonKey}).Decode(&settings)
				if err != nil {
					return models.Settings{}, err
				}
				return settings, nil
			}
			return models.Settings{}, insertErr
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			settings.ID = id
		}
	} else if err != nil {
		return models.Settings{}, err
	}

	cache.SetJSON(ctx, settingsCacheKey, settings, 10*time.Minute)
	return settings, nil
}

/* =========================
   HANDLERS
========================= */

// GetSettings serves the singleton. Admin callers get the full document,
// everyone else the public projection.
func GetSettings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/settings"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		settings, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		_, isAdmin, _ := identityFromHeader(c.GetHeader("Authorization"), config.AppEnv.JWTSecret)
		if isAdmin {
			c.JSON(http.StatusOK, settings)
			return
		}
		c.JSON(http.StatusOK, publicSettingsView(settings))
	}
}

// UpdateSettings replaces the whole mutable document. Last writer wins.
func UpdateSettings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/settings"
		defer handlePanic(c, route)

		var req models.Settings
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		req.ID = current.ID
		req.Singleton = models.SettingsSingletonKey
		req.CreatedAt = current.CreatedAt
		req.UpdatedAt = time.Now()

		_, err = db.Collection("settings").ReplaceOne(ctx, bson.M{"_id": current.ID}, req)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cache.Invalidate(ctx, settingsCacheKey)
		c.JSON(http.StatusOK, req)
	}
}

// UpdateSettingSection patches only the fields belonging to one section.
func UpdateSettingSection(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/settings/:section"
		defer handlePanic(c, route)

		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		section := c.Param("section")
		update, ok := filterSectionFields(section, body)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "unknown settings section")
			return
		}
		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no valid fields for this section")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		current, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		for field, value := range update {
			set[field] = value
		}

		_, err = db.Collection("settings").UpdateOne(ctx, bson.M{"_id": current.ID}, bson.M{"$set": set})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cache.Invalidate(ctx, settingsCacheKey)

		settings, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// ResetSettings drops the singleton and recreates it from defaults.
func ResetSettings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/settings/reset"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		_, err := db.Collection("settings").DeleteOne(ctx, bson.M{"singleton": models.SettingsSingletonKey})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		cache.Invalidate(ctx, settingsCacheKey)

		settings, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}
