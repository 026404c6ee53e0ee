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
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	Product  string  `json:"product" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price"`
}

type createOrderRequest struct {
	OrderItems        []createOrderItemRequest `json:"orderItems" binding:"required"`
	FulfillmentMethod string                   `json:"fulfillmentMethod"`
	ShippingAddress   models.ShippingAddress   `json:"shippingAddress"`
	PaymentMethod     string                   `json:"paymentMethod" binding:"required"`
	ItemsPrice        float64                  `json:"itemsPrice"`
	TaxPrice          float64                  `json:"taxPrice"`
	ShippingPrice     float64                  `json:"shippingPrice"`
	TotalPrice        float64                  `json:"totalPrice"`
}

type payOrderRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		order, err := buildOrderFromRequest(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		c.JSON(http.StatusCreated, order)
	}
}

func buildOrderFromRequest(req createOrderRequest, userID primitive.ObjectID) (models.Order, error) {
	if len(req.OrderItems) == 0 {
		return models.Order{}, errNoOrderItems
	}

	method := req.PaymentMethod
	switch method {
	case models.PaymentCard, models.PaymentPayPal, models.PaymentCOD, models.PaymentEFT:
	default:
		return models.Order{}, errInvalidPaymentMethod
	}

	fulfillment := req.FulfillmentMethod
	if fulfillment == "" {
		fulfillment = models.FulfillmentDelivery
	}
	if fulfillment != models.FulfillmentDelivery && fulfillment != models.FulfillmentCollection {
		return models.Order{}, errInvalidFulfillment
	}
	if fulfillment == models.FulfillmentDelivery && strings.TrimSpace(req.ShippingAddress.Street) == "" {
		return models.Order{}, errAddressRequired
	}

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return models.Order{}, errInvalidProductID
		}
		if item.Quantity <= 0 {
			return models.Order{}, errInvalidQuantity
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      strings.TrimSpace(item.Name),
			Quantity:  item.Quantity,
			Image:     item.Image,
			Price:     item.Price,
		})
	}

	now := time.Now()
	return models.Order{
		UserID:            userID,
		OrderItems:        items,
		FulfillmentMethod: fulfillment,
		ShippingAddress:   req.ShippingAddress,
		PaymentMethod:     method,
		CODPaymentStatus:  models.CODPending,
		ItemsPrice:        req.ItemsPrice,
		TaxPrice:          req.TaxPrice,
		ShippingPrice:     req.ShippingPrice,
		TotalPrice:        req.TotalPrice,
		Status:            models.OrderPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

/* =========================
   QUERIES
========================= */

func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != userID && !isAdminRequest(c) {
			respondWithError(c, http.StatusForbidden, route, "not authorized to view this order")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/myorders"

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"user": userID}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

/* =========================
   PAYMENT
========================= */

// PayOrder records an instant gateway payment (card / paypal) and advances
// the order into processing.
func PayOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/pay"
		defer handlePanic(c, route)

		orderID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req payOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		order.MarkPaid(now)
		order.PaymentResult = &models.PaymentResult{
			ID:           req.ID,
			Status:       req.Status,
			UpdateTime:   req.UpdateTime,
			EmailAddress: req.EmailAddress,
		}
		order.UpdatedAt = now

		if err := saveOrder(ctx, db, &order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// UploadEFTProof stores an unverified proof-of-payment document on an EFT
// order.
func UploadEFTProof(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/eft-proof"

		orderID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			ProofURL string `json:"proofUrl"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := requirePaymentMethod(order, models.PaymentEFT); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if strings.TrimSpace(req.ProofURL) == "" {
			respondWithError(c, http.StatusBadRequest, route, "proof of payment URL is required")
			return
		}

		now := time.Now()
		order.PaymentProof = &models.PaymentProof{
			URL:        req.ProofURL,
			UploadedAt: now,
			Verified:   false,
		}
		order.UpdatedAt = now

		if err := saveOrder(ctx, db, &order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   CUSTOMER CANCEL
========================= */

func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/cancel"

		userID, ok := currentUserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := objectIDParam(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.UserID != userID {
			respondWithError(c, http.StatusForbidden, route, "not authorized to cancel this order")
			return
		}
		if order.Status == models.OrderDelivered {
			respondWithError(c, http.StatusBadRequest, route, "cannot cancel a delivered order")
			return
		}
		if order.Status == models.OrderCancelled {
			respondWithError(c, http.StatusBadRequest, route, "order is already cancelled")
			return
		}

		reason := req.Reason
		if reason == "" {
			reason = "Customer requested cancellation"
		}

		now := time.Now()
		order.Cancel("customer", &userID, reason, now)
		order.UpdatedAt = now

		if err := saveOrder(ctx, db, &order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func saveOrder(ctx context.Context, db *mongo.Database, order *models.Order) error {
	_, err := db.Collection("orders").ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	return err
}
