package live

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"estore/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans the periodic dashboard snapshot out to every connected admin
// client. Clients only listen; inbound messages are discarded.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*websocket.Conn]bool
	db          *mongo.Database
}

func NewHub(db *mongo.Database) *Hub {
	return &Hub{
		subscribers: make(map[*websocket.Conn]bool),
		db:          db,
	}
}

// Run broadcasts a snapshot every 10 seconds until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *Hub) broadcast() {
	h.mu.Lock()
	if len(h.subscribers) == 0 {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	snapshot, err := h.snapshot()
	if err != nil {
		log.Println("live snapshot error:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subscribers {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(snapshot); err != nil {
			conn.Close()
			delete(h.subscribers, conn)
		}
	}
}

type dashboardSnapshot struct {
	Timestamp         time.Time `json:"timestamp"`
	ActiveSessions    int64     `json:"activeSessions"`
	PendingOrders     int64     `json:"pendingOrders"`
	ActiveDeliveries  int64     `json:"activeDeliveries"`
	PendingDeliveries int64     `json:"pendingDeliveries"`
}

func (h *Hub) snapshot() (dashboardSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-5 * time.Minute)
	activeSessions, err := h.db.Collection(models.AnalyticsSessionsCollection).CountDocuments(ctx, bson.M{
		"isActive": true,
		"endTime":  bson.M{"$gte": cutoff},
	})
	if err != nil {
		return dashboardSnapshot{}, err
	}

	pendingOrders, err := h.db.Collection("orders").CountDocuments(ctx, bson.M{"status": models.OrderPending})
	if err != nil {
		return dashboardSnapshot{}, err
	}

	activeDeliveries, err := h.db.Collection("deliveries").CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": bson.A{
			models.DeliveryAssigned, models.DeliveryAccepted, models.DeliveryPickedUp,
			models.DeliveryInTransit, models.DeliveryOutForDelivery,
		}},
	})
	if err != nil {
		return dashboardSnapshot{}, err
	}

	pendingDeliveries, err := h.db.Collection("deliveries").CountDocuments(ctx, bson.M{
		"status": models.DeliveryPending,
	})
	if err != nil {
		return dashboardSnapshot{}, err
	}

	return dashboardSnapshot{
		Timestamp:         time.Now(),
		ActiveSessions:    activeSessions,
		PendingOrders:     pendingOrders,
		ActiveDeliveries:  activeDeliveries,
		PendingDeliveries: pendingDeliveries,
	}, nil
}

// ServeWS upgrades the connection and parks it in the subscriber set. The
// read loop exists only to notice the close.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("ws upgrade failed:", err)
		return
	}

	h.mu.Lock()
	h.subscribers[conn] = true
	h.mu.Unlock()

	// Send an immediate snapshot so the dashboard is not blank until the
	// next tick.
	if snapshot, err := h.snapshot(); err == nil {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		_ = conn.WriteJSON(snapshot)
	}

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.subscribers, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
