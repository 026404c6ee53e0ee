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

	"estore/internal/config"
	"estore/internal/models"
)

/* =========================
   PUBLIC TRACKING
========================= */

type sessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	DeviceID  string `json:"deviceId"`
	UserAgent string `json:"userAgent"`
	Referrer  string `json:"referrer"`
}

// CreateOrUpdateSession upserts a browsing session keyed by the
// client-generated session token. Repeat calls refresh the activity window.
// An optional bearer token links the session to a registered user.
func CreateOrUpdateSession(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/analytics/session"
		defer handlePanic(c, route)

		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if strings.TrimSpace(req.SessionID) == "" {
			respondWithError(c, http.StatusBadRequest, route, "sessionId is required")
			return
		}

		userID, _, _ := identityFromHeader(c.GetHeader("Authorization"), config.AppEnv.JWTSecret)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		sessions := db.Collection(models.AnalyticsSessionsCollection)
		now := time.Now()

		var session models.AnalyticsSession
		err := sessions.FindOne(ctx, bson.M{"sessionId": req.SessionID}).Decode(&session)
		if err == mongo.ErrNoDocuments {
			session = models.AnalyticsSession{
				SessionID:        req.SessionID,
				UserID:           userID,
				IsRegistered:     userID != nil,
				DeviceID:         req.DeviceID,
				UserAgent:        req.UserAgent,
				Referrer:         req.Referrer,
				StartTime:        now,
				PageViews:        []models.PageView{},
				ProductViews:     []models.ProductView{},
				CategoriesViewed: []string{},
				IsActive:         true,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			session.Touch(now)

			res, err := sessions.InsertOne(ctx, session)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				session.ID = id
			}
			c.JSON(http.StatusCreated, session)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Late login during the session upgrades it to registered.
		if userID != nil && session.UserID == nil {
			session.UserID = userID
			session.IsRegistered = true
		}
		session.IsActive = true
		session.Touch(now)
		session.UpdatedAt = now

		if err := saveSession(ctx, db, &session); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

func TrackPageView(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/analytics/pageview"

		var req struct {
			SessionID string `json:"sessionId" binding:"required"`
			Page      string `json:"page" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := findSession(ctx, db, req.SessionID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "session not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		session.AddPageView(req.Page, now)
		session.Touch(now)
		session.UpdatedAt = now

		if err := saveSession(ctx, db, session); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "totalPages": session.TotalPages})
	}
}

func TrackProductView(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/analytics/productview"

		var req struct {
			SessionID   string `json:"sessionId" binding:"required"`
			ProductID   string `json:"productId" binding:"required"`
			ProductName string `json:"productName"`
			Category    string `json:"category"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := findSession(ctx, db, req.SessionID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "session not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		session.AddProductView(productID, req.ProductName, req.Category, now)
		session.Touch(now)
		session.UpdatedAt = now

		if err := saveSession(ctx, db, session); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "interests": session.Interests})
	}
}

func EndSession(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/analytics/session/end"

		var req struct {
			SessionID string `json:"sessionId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		session, err := findSession(ctx, db, req.SessionID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "session not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		now := time.Now()
		session.End(now)
		session.UpdatedAt = now

		if err := saveSession(ctx, db, session); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "duration": session.Duration})
	}
}

func findSession(ctx context.Context, db *mongo.Database, sessionID string) (*models.AnalyticsSession, error) {
	var session models.AnalyticsSession
	err := db.Collection(models.AnalyticsSessionsCollection).FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func saveSession(ctx context.Context, db *mongo.Database, session *models.AnalyticsSession) error {
	_, err := db.Collection(models.AnalyticsSessionsCollection).ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	return err
}
