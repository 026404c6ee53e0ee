package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estore/internal/models"
)

func assignedDelivery(providerID primitive.ObjectID, assignedAt time.Time) models.Delivery {
	return models.Delivery{
		OrderID:          primitive.NewObjectID(),
		DeliveryProvider: &providerID,
		Status:           models.DeliveryAssigned,
		ProviderResponse: models.ResponsePending,
		AssignedAt:       &assignedAt,
	}
}

func TestApplyProviderResponseAccept(t *testing.T) {
	now := time.Now()
	delivery := assignedDelivery(primitive.NewObjectID(), now.Add(-time.Minute))

	delta, err := applyProviderResponse(&delivery, models.ResponseAccepted, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta != 0 {
		t.Fatalf("accept must not touch the assignment counter, got delta=%d", delta)
	}
	if delivery.Status != models.DeliveryAccepted || delivery.ProviderResponse != models.ResponseAccepted {
		t.Fatalf("unexpected state status=%s response=%s", delivery.Status, delivery.ProviderResponse)
	}
	if delivery.AcceptedAt == nil {
		t.Fatal("expected acceptedAt to be stamped")
	}
	if len(delivery.Notifications) != 1 || delivery.Notifications[0].Type != "accepted" {
		t.Fatalf("expected one accepted notification, got %+v", delivery.Notifications)
	}
}

func TestApplyProviderResponseRejectReturnsJobToPool(t *testing.T) {
	now := time.Now()
	delivery := assignedDelivery(primitive.NewObjectID(), now.Add(-time.Minute))

	delta, err := applyProviderResponse(&delivery, models.ResponseRejected, "too far", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta != -1 {
		t.Fatalf("reject must compensate the assignment counter, got delta=%d", delta)
	}
	if delivery.Status != models.DeliveryPending {
		t.Fatalf("expected job back to pending, got %s", delivery.Status)
	}
	if delivery.DeliveryProvider != nil || delivery.AssignedAt != nil {
		t.Fatal("expected assignment fields cleared")
	}
	if delivery.ProviderResponse != models.ResponsePending {
		t.Fatalf("expected providerResponse reset, got %s", delivery.ProviderResponse)
	}
	if delivery.RejectionReason != "too far" {
		t.Fatalf("expected rejection reason recorded, got %q", delivery.RejectionReason)
	}
}

func TestApplyProviderResponseRejectsDoubleAnswer(t *testing.T) {
	now := time.Now()
	delivery := assignedDelivery(primitive.NewObjectID(), now)
	delivery.ProviderResponse = models.ResponseAccepted

	if _, err := applyProviderResponse(&delivery, models.ResponseAccepted, "", now); err != errJobNotAwaitingResponse {
		t.Fatalf("expected errJobNotAwaitingResponse, got %v", err)
	}
}

func TestApplyProviderResponseUnknownValue(t *testing.T) {
	now := time.Now()
	delivery := assignedDelivery(primitive.NewObjectID(), now)

	if _, err := applyProviderResponse(&delivery, "maybe", "", now); err != errInvalidProviderResponse {
		t.Fatalf("expected errInvalidProviderResponse, got %v", err)
	}
}

func TestApplyDeliveryProgressStampsTimes(t *testing.T) {
	now := time.Now()
	delivery := models.Delivery{Status: models.DeliveryAccepted}

	completed, err := applyDeliveryProgress(&delivery, "t1", models.DeliveryPickedUp, nil, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed {
		t.Fatal("picked_up must not complete the job")
	}
	if delivery.ActualPickupTime == nil {
		t.Fatal("expected actualPickupTime stamped")
	}
	if delivery.Status != models.DeliveryPickedUp {
		t.Fatalf("expected status mirrored from tracking, got %s", delivery.Status)
	}

	later := now.Add(30 * time.Minute)
	completed, err = applyDeliveryProgress(&delivery, "t2", models.DeliveryDelivered, nil, "left at door", later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Fatal("delivered must complete the job")
	}
	if delivery.ActualDeliveryTime == nil {
		t.Fatal("expected actualDeliveryTime stamped")
	}
	if got := delivery.DeliveryDuration(); got != 30 {
		t.Fatalf("expected 30 minute duration, got %d", got)
	}
	if len(delivery.Tracking) != 2 {
		t.Fatalf("expected append-only tracking log with 2 rows, got %d", len(delivery.Tracking))
	}
}

func TestApplyDeliveryProgressRejectsUnknownStatus(t *testing.T) {
	delivery := models.Delivery{Status: models.DeliveryAccepted}
	if _, err := applyDeliveryProgress(&delivery, "t1", "teleported", nil, "", time.Now()); err != errInvalidDeliveryStatus {
		t.Fatalf("expected errInvalidDeliveryStatus, got %v", err)
	}
	if len(delivery.Tracking) != 0 {
		t.Fatal("rejected update must not append tracking")
	}
}
