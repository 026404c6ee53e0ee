package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estore/internal/models"
)

// timeSpentBoundaries are the duration bucket edges in seconds for the
// time-spent report. The last bucket is open ended.
var timeSpentBoundaries = []int64{0, 30, 60, 180, 300, 600, 1800, 3600}

// timeSpentBucketLabel names the bucket whose lower edge is the given
// boundary value.
func timeSpentBucketLabel(lower int64) string {
	for i, edge := range timeSpentBoundaries {
		if edge != lower {
			continue
		}
		if i == len(timeSpentBoundaries)-1 {
			return fmt.Sprintf("%ds+", edge)
		}
		return fmt.Sprintf("%d-%ds", edge, timeSpentBoundaries[i+1])
	}
	return "other"
}

// analyticsWindow resolves the ?startDate=&endDate= query range, defaulting
// to the trailing 30 days.
func analyticsWindow(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	start := now.AddDate(0, 0, -30)
	end := now

	if startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid startDate")
		}
		start = parsed
	}
	if endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid endDate")
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

/* =========================
   VISITOR STATS
========================= */

// GetVisitorStats returns visit totals split by registered/guest, plus daily
// and hourly traffic series for the requested window.
func GetVisitorStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/analytics/visitors"
		defer handlePanic(c, route)

		start, end, err := analyticsWindow(c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		sessions := db.Collection(models.AnalyticsSessionsCollection)
		match := bson.M{"startTime": bson.M{"$gte": start, "$lte": end}}

		totalsPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{
				"_id":            nil,
				"totalVisitors":  bson.M{"$sum": 1},
				"registered":     bson.M{"$sum": bson.M{"$cond": bson.A{"$isRegistered", 1, 0}}},
				"guests":         bson.M{"$sum": bson.M{"$cond": bson.A{"$isRegistered", 0, 1}}},
				"avgDuration":    bson.M{"$avg": "$duration"},
				"totalPageViews": bson.M{"$sum": "$totalPages"},
			}}},
		}
		cursor, err := sessions.Aggregate(ctx, totalsPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var totals []struct {
			TotalVisitors  int64   `bson:"totalVisitors"`
			Registered     int64   `bson:"registered"`
			Guests         int64   `bson:"guests"`
			AvgDuration    float64 `bson:"avgDuration"`
			TotalPageViews int64   `bson:"totalPageViews"`
		}
		if err := cursor.All(ctx, &totals); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		dailyPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{
				"_id": bson.M{"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$startTime",
				}},
				"visitors":   bson.M{"$sum": 1},
				"registered": bson.M{"$sum": bson.M{"$cond": bson.A{"$isRegistered", 1, 0}}},
			}}},
			{{Key: "$sort", Value: bson.M{"_id": 1}}},
		}
		cursor, err = sessions.Aggregate(ctx, dailyPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var daily []struct {
			Date       string `bson:"_id" json:"date"`
			Visitors   int64  `bson:"visitors" json:"visitors"`
			Registered int64  `bson:"registered" json:"registered"`
		}
		if err := cursor.All(ctx, &daily); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		hourlyPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{
				"_id":      bson.M{"$hour": "$startTime"},
				"visitors": bson.M{"$sum": 1},
			}}},
			{{Key: "$sort", Value: bson.M{"_id": 1}}},
		}
		cursor, err = sessions.Aggregate(ctx, hourlyPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var hourly []struct {
			Hour     int   `bson:"_id" json:"hour"`
			Visitors int64 `bson:"visitors" json:"visitors"`
		}
		if err := cursor.All(ctx, &hourly); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		result := gin.H{
			"totalVisitors":  int64(0),
			"registered":     int64(0),
			"guests":         int64(0),
			"avgDuration":    float64(0),
			"totalPageViews": int64(0),
			"daily":          daily,
			"hourly":         hourly,
			"startDate":      start.Format("2006-01-02"),
			"endDate":        end.Format("2006-01-02"),
		}
		if len(totals) > 0 {
			result["totalVisitors"] = totals[0].TotalVisitors
			result["registered"] = totals[0].Registered
			result["guests"] = totals[0].Guests
			result["avgDuration"] = totals[0].AvgDuration
			result["totalPageViews"] = totals[0].TotalPageViews
		}

		c.JSON(http.StatusOK, result)
	}
}

/* =========================
   POPULAR CONTENT
========================= */

// GetPopularContent ranks the most viewed pages, products and categories
// across sessions in the window.
func GetPopularContent(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/analytics/popular"
		defer handlePanic(c, route)

		start, end, err := analyticsWindow(c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		sessions := db.Collection(models.AnalyticsSessionsCollection)
		match := bson.M{"startTime": bson.M{"$gte": start, "$lte": end}}

		pagesPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$unwind", Value: "$pageViews"}},
			{{Key: "$group", Value: bson.M{"_id": "$pageViews.page", "views": bson.M{"$sum": 1}}}},
			{{Key: "$sort", Value: bson.M{"views": -1}}},
			{{Key: "$limit", Value: 10}},
		}
		cursor, err := sessions.Aggregate(ctx, pagesPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var pages []struct {
			Page  string `bson:"_id" json:"page"`
			Views int64  `bson:"views" json:"views"`
		}
		if err := cursor.All(ctx, &pages); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		productsPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$unwind", Value: "$productViews"}},
			{{Key: "$group", Value: bson.M{
				"_id":         "$productViews.productId",
				"productName": bson.M{"$first": "$productViews.productName"},
				"views":       bson.M{"$sum": 1},
			}}},
			{{Key: "$sort", Value: bson.M{"views": -1}}},
			{{Key: "$limit", Value: 10}},
		}
		cursor, err = sessions.Aggregate(ctx, productsPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		products := []bson.M{}
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		categoriesPipeline := mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$unwind", Value: "$categoriesViewed"}},
			{{Key: "$group", Value: bson.M{"_id": "$categoriesViewed", "views": bson.M{"$sum": 1}}}},
			{{Key: "$sort", Value: bson.M{"views": -1}}},
			{{Key: "$limit", Value: 10}},
		}
		cursor, err = sessions.Aggregate(ctx, categoriesPipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var categories []struct {
			Category string `bson:"_id" json:"category"`
			Views    int64  `bson:"views" json:"views"`
		}
		if err := cursor.All(ctx, &categories); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"pages":      pages,
			"products":   products,
			"categories": categories,
		})
	}
}

/* =========================
   USER INTERESTS
========================= */

// GetUserInterests contrasts what registered users and guests look at.
func GetUserInterests(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/analytics/interests"
		defer handlePanic(c, route)

		start, end, err := analyticsWindow(c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		registered, err := cohortInterests(ctx, db, start, end, true)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		guests, err := cohortInterests(ctx, db, start, end, false)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"registered": registered,
			"guests":     guests,
		})
	}
}

func cohortInterests(ctx context.Context, db *mongo.Database, start, end time.Time, registered bool) (gin.H, error) {
	sessions := db.Collection(models.AnalyticsSessionsCollection)
	match := bson.M{
		"startTime":    bson.M{"$gte": start, "$lte": end},
		"isRegistered": registered,
	}

	productsPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$interests.topProducts"}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$interests.topProducts.productId",
			"productName": bson.M{"$first": "$interests.topProducts.productName"},
			"views":       bson.M{"$sum": "$interests.topProducts.viewCount"},
		}}},
		{{Key: "$sort", Value: bson.M{"views": -1}}},
		{{Key: "$limit", Value: 10}},
	}
	cursor, err := sessions.Aggregate(ctx, productsPipeline)
	if err != nil {
		return nil, err
	}
	products := []bson.M{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	categoriesPipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$interests.topCategories"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$interests.topCategories.category",
			"views": bson.M{"$sum": "$interests.topCategories.viewCount"},
		}}},
		{{Key: "$sort", Value: bson.M{"views": -1}}},
		{{Key: "$limit", Value: 5}},
	}
	cursor, err = sessions.Aggregate(ctx, categoriesPipeline)
	if err != nil {
		return nil, err
	}
	categories := []bson.M{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	return gin.H{"topProducts": products, "topCategories": categories}, nil
}

/* =========================
   TIME SPENT
========================= */

// GetTimeSpentAnalysis buckets session durations into fixed ranges.
func GetTimeSpentAnalysis(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/analytics/time-spent"
		defer handlePanic(c, route)

		start, end, err := analyticsWindow(c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		boundaries := make(bson.A, 0, len(timeSpentBoundaries)+1)
		for _, edge := range timeSpentBoundaries {
			boundaries = append(boundaries, edge)
		}
		boundaries = append(boundaries, int64(1<<62))

		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"startTime": bson.M{"$gte": start, "$lte": end}}}},
			{{Key: "$bucket", Value: bson.M{
				"groupBy":    "$duration",
				"boundaries": boundaries,
				"default":    "other",
				"output": bson.M{
					"count":       bson.M{"$sum": 1},
					"avgDuration": bson.M{"$avg": "$duration"},
				},
			}}},
		}
		cursor, err := db.Collection(models.AnalyticsSessionsCollection).Aggregate(ctx, pipeline)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		var rows []struct {
			Lower       interface{} `bson:"_id"`
			Count       int64       `bson:"count"`
			AvgDuration float64     `bson:"avgDuration"`
		}
		if err := cursor.All(ctx, &rows); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		buckets := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			label := "other"
			switch v := row.Lower.(type) {
			case int64:
				label = timeSpentBucketLabel(v)
			case int32:
				label = timeSpentBucketLabel(int64(v))
			case float64:
				label = timeSpentBucketLabel(int64(v))
			}
			buckets = append(buckets, gin.H{
				"range":       label,
				"count":       row.Count,
				"avgDuration": row.AvgDuration,
			})
		}

		c.JSON(http.StatusOK, gin.H{"buckets": buckets})
	}
}

/* =========================
   ACTIVE SESSIONS
========================= */

// GetActiveSessions lists sessions still active with a heartbeat inside the
// last five minutes, newest first, capped at 50.
func GetActiveSessions(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/analytics/active"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cutoff := time.Now().Add(-5 * time.Minute)
		filter := bson.M{
			"isActive": true,
			"endTime":  bson.M{"$gte": cutoff},
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "endTime", Value: -1}}).
			SetLimit(50)

		cursor, err := db.Collection(models.AnalyticsSessionsCollection).Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		sessions := []models.AnalyticsSession{}
		if err := cursor.All(ctx, &sessions); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":    len(sessions),
			"sessions": sessions,
		})
	}
}
