package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMarkPaidAdvancesToProcessing(t *testing.T) {
	now := time.Now()
	order := Order{Status: OrderPending}

	order.MarkPaid(now)

	if !order.IsPaid || order.PaidAt == nil {
		t.Fatal("expected payment flags set")
	}
	if order.Status != OrderProcessing {
		t.Fatalf("expected processing, got %s", order.Status)
	}
}

func TestCancelRecordsAudit(t *testing.T) {
	now := time.Now()
	actorID := primitive.NewObjectID()
	order := Order{Status: OrderProcessing}

	order.Cancel("customer", &actorID, "changed my mind", now)

	if order.Status != OrderCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if order.Cancellation == nil {
		t.Fatal("expected cancellation sub-document")
	}
	if order.Cancellation.CancelledBy != "customer" || order.Cancellation.Reason != "changed my mind" {
		t.Fatalf("unexpected audit %+v", order.Cancellation)
	}
}

func TestBannerVisibleAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	banner := Banner{Active: true}
	if !banner.VisibleAt(now) {
		t.Fatal("active banner without window must be visible")
	}

	banner.StartDate = &future
	if banner.VisibleAt(now) {
		t.Fatal("banner before its start date must be hidden")
	}

	banner.StartDate = &past
	banner.EndDate = &past
	if banner.VisibleAt(now) {
		t.Fatal("banner past its end date must be hidden")
	}

	banner.EndDate = &future
	if !banner.VisibleAt(now) {
		t.Fatal("banner inside its window must be visible")
	}

	banner.Active = false
	if banner.VisibleAt(now) {
		t.Fatal("inactive banner must be hidden regardless of window")
	}
}
