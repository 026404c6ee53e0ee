package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/export"
	"estore/internal/models"
	"estore/internal/notify"
)

/* =========================
   ADMIN LISTING
========================= */

// GetOrders lists all orders with optional filters: ?status=a,b&fulfillmentMethod=x&isPaid=true
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		filter := bson.M{}

		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			statuses := []string{}
			for _, s := range strings.Split(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					statuses = append(statuses, s)
				}
			}
			if len(statuses) == 1 {
				filter["status"] = statuses[0]
			} else if len(statuses) > 1 {
				filter["status"] = bson.M{"$in": statuses}
			}
		}

		if method := strings.TrimSpace(c.Query("fulfillmentMethod")); method != "" {
			filter["fulfillmentMethod"] = method
		}

		if paid := strings.TrimSpace(c.Query("isPaid")); paid != "" {
			filter["isPaid"] = paid == "true"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
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
   COD / EFT CONFIRMATION
========================= */

func ConfirmCODPayment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/cod-confirm"

		adminID, ok := currentUserID(c)
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
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if req.Status != models.CODReceived && req.Status != models.CODDenied {
			respondWithError(c, http.StatusBadRequest, route, `invalid status, must be "received" or "denied"`)
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

		if err := requirePaymentMethod(order, models.PaymentCOD); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		order.CODPaymentStatus = req.Status
		order.CODConfirmedBy = &adminID
		order.CODConfirmedAt = &now

		if req.Status == models.CODReceived {
			order.MarkPaid(now)
		} else {
			order.Cancel("admin", &adminID, "COD payment denied", now)
		}
		order.UpdatedAt = now

		if err := saveOrder(ctx, db, &order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func VerifyEFTProof(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/eft-verify"

		adminID, ok := currentUserID(c)
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
			Verified bool `json:"verified"`
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
		if order.PaymentProof == nil || order.PaymentProof.URL == "" {
			respondWithError(c, http.StatusBadRequest, route, "no proof of payment found for this order")
			return
		}

		now := time.Now()
		order.PaymentProof.Verified = req.Verified
		order.PaymentProof.VerifiedBy = &adminID
		order.PaymentProof.VerifiedAt = &now

		if req.Verified {
			order.MarkPaid(now)
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
   STATUS TRANSITIONS
========================= */

// UpdateOrderStatus is the guarded transition endpoint. The optional
// sendEmail flag triggers a best-effort customer notification after the
// write; a failed email never fails the request.
func UpdateOrderStatus(db *mongo.Database, sender *notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		adminID, ok := currentUserID(c)
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
			Status             string `json:"status" binding:"required"`
			CancelledBy        string `json:"cancelledBy"`
			CancellationReason string `json:"cancellationReason"`
			SendEmail          bool   `json:"sendEmail"`
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

		now := time.Now()
		if err := applyOrderStatus(&order, req.Status, req.CancelledBy, req.CancellationReason, &adminID, now); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		order.UpdatedAt = now

		if err := saveOrder(ctx, db, &order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if req.SendEmail {
			go func(order models.Order, status string) {
				user, err := fetchUser(db, order.UserID)
				if err != nil {
					log.Printf("[%s] status email skipped, user lookup failed: %v", route, err)
					return
				}
				if err := sender.SendOrderStatusEmail(order, user, status); err != nil {
					log.Printf("[%s] status email failed: %v", route, err)
				}
			}(order, req.Status)
		}

		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderToDelivered marks the order delivered directly. Subject to the
// same payment guard as the status endpoint.
func UpdateOrderToDelivered(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/deliver"

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

		now := time.Now()
		if err := applyOrderStatus(&order, models.OrderDelivered, "", "", nil, now); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
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
   NOTIFICATIONS
========================= */

func SendPaymentConfirmation(db *mongo.Database, sender *notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/orders/:id/send-confirmation"

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

		if !order.IsPaid {
			respondWithError(c, http.StatusBadRequest, route, "cannot send confirmation for unpaid order")
			return
		}

		user, err := fetchUser(db, order.UserID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "order has no associated user")
			return
		}

		if err := sender.SendPaymentConfirmationEmail(order, user); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to send confirmation email")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "payment confirmation email sent successfully",
			"recipient": user.Email,
		})
	}
}

/* =========================
   EXPORTS
========================= */

// ExportOrderReceipt renders the order receipt as a PDF attachment.
func ExportOrderReceipt(db *mongo.Database, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/:id/export"

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

		user, err := fetchUser(db, order.UserID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "order has no associated user")
			return
		}

		pdf, err := export.OrderReceiptPDF(order, user, baseURL)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to generate receipt")
			return
		}

		id := order.ID.Hex()
		filename := fmt.Sprintf("order-receipt-%s.pdf", id[len(id)-8:])
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

// ExportOrdersCSV streams all orders (or only paid ones) as CSV.
func ExportOrdersCSV(db *mongo.Database, paidOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/export/csv"

		filter := bson.M{}
		sortKey := "createdAt"
		prefix := "orders-export"
		if paidOnly {
			filter["isPaid"] = true
			sortKey = "paidAt"
			prefix = "paid-orders"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
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

		users, err := fetchUsersForOrders(ctx, db, orders)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		csv, err := export.OrdersCSV(orders, users)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to generate csv")
			return
		}

		filename := fmt.Sprintf("%s-%s.csv", prefix, time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv", []byte(csv))
	}
}

/* =========================
   USER LOOKUPS
========================= */

func fetchUser(db *mongo.Database, userID primitive.ObjectID) (models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	return user, err
}

func fetchUsersForOrders(ctx context.Context, db *mongo.Database, orders []models.Order) (map[primitive.ObjectID]models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[primitive.ObjectID]bool, len(orders))
	for _, order := range orders {
		if !seen[order.UserID] {
			seen[order.UserID] = true
			ids = append(ids, order.UserID)
		}
	}

	users := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.User
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	for _, user := range list {
		users[user.ID] = user
	}
	return users, nil
}
