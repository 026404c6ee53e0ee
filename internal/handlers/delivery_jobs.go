package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

var (
	errInvalidDeliveryStatus   = errors.New("invalid delivery status")
	errInvalidProviderResponse = errors.New("response must be accepted or rejected")
	errJobNotAwaitingResponse  = errors.New("delivery is not awaiting a provider response")
)

func isValidDeliveryStatus(status string) bool {
	switch status {
	case models.DeliveryPending, models.DeliveryAssigned, models.DeliveryAccepted,
		models.DeliveryPickedUp, models.DeliveryInTransit, models.DeliveryOutForDelivery,
		models.DeliveryDelivered, models.DeliveryFailed, models.DeliveryCancelled,
		models.DeliveryReturned:
		return true
	}
	return false
}

// applyProviderResponse records an accept or reject on an assigned job. A
// reject puts the job back into the pool and undoes the assignment, so the
// returned delta (-1) must be applied to the provider's totalDeliveries.
func applyProviderResponse(d *models.Delivery, response, reason string, now time.Time) (int, error) {
	if d.ProviderResponse != models.ResponsePending {
		return 0, errJobNotAwaitingResponse
	}

	switch response {
	case models.ResponseAccepted:
		d.ProviderResponse = models.ResponseAccepted
		d.Status = models.DeliveryAccepted
		d.AcceptedAt = &now
		d.AddNotification("accepted", now)
		return 0, nil
	case models.ResponseRejected:
		d.ProviderResponse = models.ResponsePending
		d.Status = models.DeliveryPending
		d.DeliveryProvider = nil
		d.AssignedAt = nil
		d.RejectionReason = reason
		return -1, nil
	default:
		return 0, errInvalidProviderResponse
	}
}

// applyDeliveryProgress appends a tracking row for a courier status update and
// stamps the pickup/delivery times. Returns true when the job just completed.
func applyDeliveryProgress(d *models.Delivery, trackingID, status string, location *models.TrackingLocation, notes string, now time.Time) (bool, error) {
	if !isValidDeliveryStatus(status) {
		return false, errInvalidDeliveryStatus
	}

	d.AddTracking(trackingID, status, location, notes, now)

	switch status {
	case models.DeliveryPickedUp:
		d.ActualPickupTime = &now
		d.AddNotification("status_update", now)
	case models.DeliveryDelivered:
		d.ActualDeliveryTime = &now
		d.AddNotification("delivered", now)
		return true, nil
	default:
		d.AddNotification("status_update", now)
	}
	return false, nil
}

/* =========================
   JOB CREATION / DISPATCH
========================= */

type createDeliveryRequest struct {
	OrderID               string                  `json:"orderId" binding:"required"`
	Customer              models.DeliveryCustomer `json:"customer" binding:"required"`
	PickupAddress         models.DeliveryAddress  `json:"pickupAddress"`
	Priority              string                  `json:"priority"`
	PackageDetails        models.PackageDetails   `json:"packageDetails"`
	DeliveryFee           float64                 `json:"deliveryFee"`
	EstimatedDeliveryTime *time.Time              `json:"estimatedDeliveryTime"`
	DeliveryNotes         string                  `json:"deliveryNotes"`
}

func CreateDeliveryJob(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/delivery"
		defer handlePanic(c, route)

		var req createDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("orders").CountDocuments(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		priority := req.Priority
		if priority == "" {
			priority = models.PriorityNormal
		}
		if models.PriorityRank(priority) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "invalid priority")
			return
		}

		now := time.Now()
		delivery := models.Delivery{
			OrderID:               orderID,
			Customer:              req.Customer,
			PickupAddress:         req.PickupAddress,
			Status:                models.DeliveryPending,
			Priority:              priority,
			PriorityRank:          models.PriorityRank(priority),
			PackageDetails:        req.PackageDetails,
			DeliveryFee:           req.DeliveryFee,
			EstimatedDeliveryTime: req.EstimatedDeliveryTime,
			ProviderResponse:      models.ResponsePending,
			DeliveryNotes:         req.DeliveryNotes,
			Tracking:              []models.TrackingEntry{},
			Notifications:         []models.DeliveryNotification{},
			CreatedAt:             now,
			UpdatedAt:             now,
		}

		res, err := db.Collection("deliveries").InsertOne(ctx, delivery)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			delivery.ID = id
		}

		c.JSON(http.StatusCreated, delivery)
	}
}

// AssignDelivery hands a job to an approved provider. Assignment is an admin
// decision and does not consider the provider's current load.
func AssignDelivery(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/delivery/:id/assign"

		deliveryID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			ProviderID string `json:"providerId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var provider models.DeliveryProvider
		err = db.Collection("deliveryproviders").FindOne(ctx, bson.M{"_id": providerID}).Decode(&provider)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "provider not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if provider.Status != models.ProviderApproved {
			respondWithError(c, http.StatusBadRequest, route, "provider is not approved")
			return
		}

		var delivery models.Delivery
		err = db.Collection("deliveries").FindOne(ctx, bson.M{"_id": deliveryID}).Decode(&delivery)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "delivery not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		delivery.DeliveryProvider = &providerID
		delivery.Status = models.DeliveryAssigned
		delivery.AssignedAt = &now
		delivery.ProviderResponse = models.ResponsePending
		delivery.RejectionReason = ""
		delivery.AddNotification("assigned", now)
		delivery.UpdatedAt = now

		if err := saveDelivery(ctx, db, &delivery); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		_, err = db.Collection("deliveryproviders").UpdateOne(ctx,
			bson.M{"_id": providerID},
			bson.M{"$inc": bson.M{"totalDeliveries": 1}, "$set": bson.M{"updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, delivery)
	}
}

/* =========================
   LISTINGS
========================= */

func GetAllDeliveries(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/delivery"

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if providerStr := c.Query("provider"); providerStr != "" {
			providerID, err := primitive.ObjectIDFromHex(providerStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
				return
			}
			filter["deliveryProvider"] = providerID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("deliveries").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		deliveries := []models.Delivery{}
		if err := cursor.All(ctx, &deliveries); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, deliveries)
	}
}

// GetAvailableJobs lists assigned jobs still awaiting the provider's answer,
// urgent first, oldest first within a priority.
func GetAvailableJobs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/delivery/jobs/available"

		providerID, err := primitive.ObjectIDFromHex(c.Query("providerId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{
			"deliveryProvider": providerID,
			"status":           models.DeliveryAssigned,
			"providerResponse": models.ResponsePending,
		}
		opts := options.Find().SetSort(bson.D{
			{Key: "priorityRank", Value: -1},
			{Key: "createdAt", Value: 1},
		})
		cursor, err := db.Collection("deliveries").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		jobs := []models.Delivery{}
		if err := cursor.All(ctx, &jobs); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, jobs)
	}
}

/* =========================
   PROVIDER ACTIONS
========================= */

func RespondToDelivery(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/delivery/:id/respond"
		defer handlePanic(c, route)

		deliveryID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			ProviderID string `json:"providerId" binding:"required"`
			Response   string `json:"response" binding:"required"`
			Reason     string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var delivery models.Delivery
		err = db.Collection("deliveries").FindOne(ctx, bson.M{"_id": deliveryID}).Decode(&delivery)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "delivery not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if delivery.DeliveryProvider == nil || *delivery.DeliveryProvider != providerID {
			respondWithError(c, http.StatusForbidden, route, "delivery is not assigned to this provider")
			return
		}

		now := time.Now()
		delta, err := applyProviderResponse(&delivery, req.Response, req.Reason, now)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		delivery.UpdatedAt = now

		if err := saveDelivery(ctx, db, &delivery); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if delta != 0 {
			_, err = db.Collection("deliveryproviders").UpdateOne(ctx,
				bson.M{"_id": providerID},
				bson.M{"$inc": bson.M{"totalDeliveries": delta}, "$set": bson.M{"updatedAt": now}},
			)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		c.JSON(http.StatusOK, delivery)
	}
}

func UpdateDeliveryStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/delivery/:id/status"
		defer handlePanic(c, route)

		deliveryID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			ProviderID string                   `json:"providerId" binding:"required"`
			Status     string                   `json:"status" binding:"required"`
			Location   *models.TrackingLocation `json:"location"`
			Notes      string                   `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var delivery models.Delivery
		err = db.Collection("deliveries").FindOne(ctx, bson.M{"_id": deliveryID}).Decode(&delivery)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "delivery not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if delivery.DeliveryProvider == nil || *delivery.DeliveryProvider != providerID {
			respondWithError(c, http.StatusForbidden, route, "delivery is not assigned to this provider")
			return
		}

		now := time.Now()
		completed, err := applyDeliveryProgress(&delivery, uuid.NewString(), req.Status, req.Location, req.Notes, now)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		delivery.UpdatedAt = now

		if err := saveDelivery(ctx, db, &delivery); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if completed {
			_, err = db.Collection("deliveryproviders").UpdateOne(ctx,
				bson.M{"_id": providerID},
				bson.M{"$inc": bson.M{"completedDeliveries": 1}, "$set": bson.M{"updatedAt": now}},
			)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		c.JSON(http.StatusOK, delivery)
	}
}

// CompleteDelivery closes a job as delivered with an optional proof of
// delivery, and frees the provider up for the next assignment.
func CompleteDelivery(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/delivery/:id/complete"
		defer handlePanic(c, route)

		deliveryID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			ProviderID      string                  `json:"providerId" binding:"required"`
			ProofOfDelivery *models.ProofOfDelivery `json:"proofOfDelivery"`
			Notes           string                  `json:"notes"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid provider id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var delivery models.Delivery
		err = db.Collection("deliveries").FindOne(ctx, bson.M{"_id": deliveryID}).Decode(&delivery)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "delivery not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if delivery.DeliveryProvider == nil || *delivery.DeliveryProvider != providerID {
			respondWithError(c, http.StatusForbidden, route, "delivery is not assigned to this provider")
			return
		}
		if delivery.Status == models.DeliveryDelivered {
			respondWithError(c, http.StatusBadRequest, route, "delivery is already completed")
			return
		}

		now := time.Now()
		delivery.ProofOfDelivery = req.ProofOfDelivery
		delivery.ActualDeliveryTime = &now
		delivery.AddTracking(uuid.NewString(), models.DeliveryDelivered, nil, req.Notes, now)
		delivery.AddNotification("delivered", now)
		delivery.UpdatedAt = now

		if err := saveDelivery(ctx, db, &delivery); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		_, err = db.Collection("deliveryproviders").UpdateOne(ctx,
			bson.M{"_id": providerID},
			bson.M{
				"$inc": bson.M{"completedDeliveries": 1},
				"$set": bson.M{"availability": models.AvailabilityAvailable, "updatedAt": now},
			},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, delivery)
	}
}

/* =========================
   HISTORY / STATISTICS
========================= */

func GetProviderDeliveryHistory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/delivery/providers/:id/history"

		providerID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var provider models.DeliveryProvider
		err = db.Collection("deliveryproviders").FindOne(ctx, bson.M{"_id": providerID}).Decode(&provider)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "provider not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("deliveries").Find(ctx, bson.M{"deliveryProvider": providerID}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		deliveries := []models.Delivery{}
		if err := cursor.All(ctx, &deliveries); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"provider": gin.H{
				"id":                  provider.ID,
				"name":                provider.Name,
				"totalDeliveries":     provider.TotalDeliveries,
				"completedDeliveries": provider.CompletedDeliveries,
				"cancelledDeliveries": provider.CancelledDeliveries,
				"successRate":         provider.SuccessRate(),
			},
			"deliveries": deliveries,
		})
	}
}

// GetDeliveryStatistics counts jobs per status bucket for the admin
// dashboard.
func GetDeliveryStatistics(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/delivery/statistics"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		stats, err := deliveryStatusCounts(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func deliveryStatusCounts(ctx context.Context, db *mongo.Database) (gin.H, error) {
	deliveries := db.Collection("deliveries")

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := deliveries.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	byStatus := gin.H{}
	var total, active, completed int64
	for _, row := range rows {
		byStatus[row.Status] = row.Count
		total += row.Count
		switch row.Status {
		case models.DeliveryDelivered:
			completed += row.Count
		case models.DeliveryAssigned, models.DeliveryAccepted, models.DeliveryPickedUp,
			models.DeliveryInTransit, models.DeliveryOutForDelivery:
			active += row.Count
		}
	}

	pendingProviders, err := db.Collection("deliveryproviders").CountDocuments(ctx, bson.M{"status": models.ProviderPending})
	if err != nil {
		return nil, err
	}

	return gin.H{
		"total":            total,
		"active":           active,
		"completed":        completed,
		"byStatus":         byStatus,
		"pendingProviders": pendingProviders,
	}, nil
}

func saveDelivery(ctx context.Context, db *mongo.Database, delivery *models.Delivery) error {
	_, err := db.Collection("deliveries").ReplaceOne(ctx, bson.M{"_id": delivery.ID}, delivery)
	return err
}
