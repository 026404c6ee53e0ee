package export

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estore/internal/models"
)

func TestOrdersCSVIncludesHeaderAndRows(t *testing.T) {
	userID := primitive.NewObjectID()
	paidAt := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	orders := []models.Order{{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		OrderItems: []models.OrderItem{
			{Name: "Widget", Quantity: 2, Price: 10},
			{Name: "Gadget", Quantity: 1, Price: 5},
		},
		PaymentMethod:     models.PaymentEFT,
		FulfillmentMethod: models.FulfillmentDelivery,
		Status:            models.OrderProcessing,
		TotalPrice:        25,
		IsPaid:            true,
		PaidAt:            &paidAt,
		CreatedAt:         paidAt.Add(-time.Hour),
	}}
	users := map[primitive.ObjectID]models.User{
		userID: {ID: userID, Name: "Jo Soap", Email: "jo@example.com"},
	}

	csv, err := OrdersCSV(orders, users)
	if err != nil {
		t.Fatalf("OrdersCSV returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "OrderID,Date,Customer") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "Jo Soap") || !strings.Contains(lines[1], "jo@example.com") {
		t.Fatalf("expected customer columns, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "Widget x2; Gadget x1") {
		t.Fatalf("expected item summary, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "2025-03-01 10:30") {
		t.Fatalf("expected paidAt column, got %q", lines[1])
	}
}

func TestOrdersCSVUnknownUser(t *testing.T) {
	orders := []models.Order{{
		ID:            primitive.NewObjectID(),
		UserID:        primitive.NewObjectID(),
		PaymentMethod: models.PaymentCOD,
		Status:        models.OrderPending,
		CreatedAt:     time.Now(),
	}}

	csv, err := OrdersCSV(orders, map[primitive.ObjectID]models.User{})
	if err != nil {
		t.Fatalf("OrdersCSV returned error: %v", err)
	}
	if !strings.Contains(csv, "cod") {
		t.Fatal("expected row rendered even without a resolved user")
	}
}
