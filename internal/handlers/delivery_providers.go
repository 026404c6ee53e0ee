package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

type registerProviderRequest struct {
	Name          string                     `json:"name" binding:"required"`
	Email         string                     `json:"email" binding:"required,email"`
	Phone         string                     `json:"phone" binding:"required"`
	VehicleType   string                     `json:"vehicleType" binding:"required,oneof=bike motorcycle car van truck"`
	VehicleNumber string                     `json:"vehicleNumber" binding:"required"`
	LicenseNumber string                     `json:"licenseNumber" binding:"required"`
	Address       models.ProviderAddress     `json:"address"`
	Documents     models.ProviderDocuments   `json:"documents"`
	BankDetails   models.ProviderBankDetails `json:"bankDetails"`
}

// RegisterProvider is the public courier signup. New providers land in
// pending until an admin approves them.
func RegisterProvider(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/delivery/providers/register"
		defer handlePanic(c, route)

		var req registerProviderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		providers := db.Collection("deliveryproviders")

		email := strings.ToLower(strings.TrimSpace(req.Email))
		count, err := providers.CountDocuments(ctx, bson.M{"$or": bson.A{
			bson.M{"email": email},
			bson.M{"vehicleNumber": req.VehicleNumber},
		}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusBadRequest, route, "provider with this email or vehicle number already exists")
			return
		}

		now := time.Now()
		provider := models.DeliveryProvider{
			Name:          strings.TrimSpace(req.Name),
			Email:         email,
			Phone:         req.Phone,
			VehicleType:   req.VehicleType,
			VehicleNumber: req.VehicleNumber,
			LicenseNumber: req.LicenseNumber,
			Address:       req.Address,
			Documents:     req.Documents,
			BankDetails:   req.BankDetails,
			Status:        models.ProviderPending,
			Availability:  models.AvailabilityOffline,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		res, err := providers.InsertOne(ctx, provider)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusBadRequest, route, "provider with this email or vehicle number already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "registration submitted, awaiting admin approval",
			"id":      res.InsertedID,
		})
	}
}

// GetAllProviders lists providers with optional ?status= and ?availability=
// filters.
func GetAllProviders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/delivery/providers"

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if availability := c.Query("availability"); availability != "" {
			filter["availability"] = availability
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("deliveryproviders").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		providers := []models.DeliveryProvider{}
		if err := cursor.All(ctx, &providers); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, providers)
	}
}

// UpdateProviderStatus moves a provider through the approval workflow.
// Approving also flips availability to available so the provider can be
// assigned work immediately.
func UpdateProviderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/delivery/providers/:id/status"

		adminID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		providerID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			Status         string `json:"status" binding:"required"`
			RejectedReason string `json:"rejectedReason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		switch req.Status {
		case models.ProviderApproved, models.ProviderRejected, models.ProviderSuspended, models.ProviderPending:
		default:
			respondWithError(c, http.StatusBadRequest, route, "invalid provider status")
			return
		}

		now := time.Now()
		update := bson.M{
			"status":    req.Status,
			"updatedAt": now,
		}
		switch req.Status {
		case models.ProviderApproved:
			update["approvedBy"] = adminID
			update["approvedAt"] = now
			update["availability"] = models.AvailabilityAvailable
		case models.ProviderRejected:
			if req.RejectedReason == "" {
				req.RejectedReason = "No reason provided"
			}
			update["rejectedReason"] = req.RejectedReason
		case models.ProviderSuspended:
			update["availability"] = models.AvailabilityOffline
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res := db.Collection("deliveryproviders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": providerID},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var provider models.DeliveryProvider
		if err := res.Decode(&provider); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "provider not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, provider)
	}
}

// UpdateProviderAvailability lets a provider toggle between available, busy
// and offline.
func UpdateProviderAvailability(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/delivery/providers/:id/availability"

		providerID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			Availability string `json:"availability" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		switch req.Availability {
		case models.AvailabilityAvailable, models.AvailabilityBusy, models.AvailabilityOffline:
		default:
			respondWithError(c, http.StatusBadRequest, route, "invalid availability")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res := db.Collection("deliveryproviders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": providerID},
			bson.M{"$set": bson.M{"availability": req.Availability, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var provider models.DeliveryProvider
		if err := res.Decode(&provider); err != nil {
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "provider not found")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, provider)
	}
}
