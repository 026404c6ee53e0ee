package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

const lowStockThreshold = 5

// growthPercent compares the current period against the previous one. A zero
// previous period with current activity reads as 100% growth.
func growthPercent(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// GetDashboardStats aggregates the admin landing page numbers: revenue and
// order counts with month-over-month growth, a 7-day sales series, top
// products and the latest orders.
func GetDashboardStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/stats/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		orders := db.Collection("orders")
		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevMonthStart := monthStart.AddDate(0, -1, 0)

		currentRevenue, currentOrders, err := revenueSince(ctx, orders, monthStart, now)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		prevRevenue, prevOrders, err := revenueSince(ctx, orders, prevMonthStart, monthStart)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		lowStockProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": lowStockThreshold}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		pendingOrders, err := orders.CountDocuments(ctx, bson.M{"status": models.OrderPending})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		salesByDay, err := salesByDaySeries(ctx, orders, now.AddDate(0, 0, -7))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		topProducts, err := topProductsByQuantity(ctx, orders, 5)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		recentOrders, err := latestOrders(ctx, orders, 10)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"revenue": gin.H{
				"current":  currentRevenue,
				"previous": prevRevenue,
				"growth":   growthPercent(currentRevenue, prevRevenue),
			},
			"orders": gin.H{
				"current":  currentOrders,
				"previous": prevOrders,
				"growth":   growthPercent(float64(currentOrders), float64(prevOrders)),
				"pending":  pendingOrders,
			},
			"totalProducts":    totalProducts,
			"lowStockProducts": lowStockProducts,
			"totalUsers":       totalUsers,
			"salesByDay":       salesByDay,
			"topProducts":      topProducts,
			"recentOrders":     recentOrders,
		})
	}
}

func revenueSince(ctx context.Context, orders *mongo.Collection, from, to time.Time) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isPaid":    true,
			"createdAt": bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$totalPrice"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Revenue float64 `bson:"revenue"`
		Count   int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return rows[0].Revenue, rows[0].Count, nil
}

func salesByDaySeries(ctx context.Context, orders *mongo.Collection, from time.Time) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"isPaid":    true,
			"createdAt": bson.M{"$gte": from},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"sales":  bson.M{"$sum": "$totalPrice"},
			"orders": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []bson.M{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func topProductsByQuantity(ctx context.Context, orders *mongo.Collection, limit int) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderCancelled}}}},
		{{Key: "$unwind", Value: "$orderItems"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$orderItems.product",
			"name":     bson.M{"$first": "$orderItems.name"},
			"quantity": bson.M{"$sum": "$orderItems.quantity"},
			"revenue": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$orderItems.price", "$orderItems.quantity"},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []bson.M{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func latestOrders(ctx context.Context, orders *mongo.Collection, limit int64) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cursor, err := orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := []models.Order{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
