package models

import (
	"testing"
	"time"
)

func TestPriorityRankOrdering(t *testing.T) {
	if PriorityRank(PriorityUrgent) <= PriorityRank(PriorityHigh) {
		t.Fatal("urgent must outrank high")
	}
	if PriorityRank(PriorityHigh) <= PriorityRank(PriorityNormal) {
		t.Fatal("high must outrank normal")
	}
	if PriorityRank(PriorityNormal) <= PriorityRank(PriorityLow) {
		t.Fatal("normal must outrank low")
	}
	if PriorityRank("bogus") != 0 {
		t.Fatalf("unknown priority must rank 0, got %d", PriorityRank("bogus"))
	}
}

func TestAddTrackingMirrorsStatus(t *testing.T) {
	now := time.Now()
	delivery := Delivery{Status: DeliveryAccepted}

	delivery.AddTracking("t1", DeliveryInTransit, nil, "", now)

	if delivery.Status != DeliveryInTransit {
		t.Fatalf("expected status mirrored, got %s", delivery.Status)
	}
	if len(delivery.Tracking) != 1 || delivery.Tracking[0].ID != "t1" {
		t.Fatalf("unexpected tracking log %+v", delivery.Tracking)
	}
}

func TestDeliveryDurationMissingTimestamps(t *testing.T) {
	delivery := Delivery{}
	if got := delivery.DeliveryDuration(); got != -1 {
		t.Fatalf("expected -1 without timestamps, got %d", got)
	}

	pickup := time.Now()
	dropoff := pickup.Add(45 * time.Minute)
	delivery.ActualPickupTime = &pickup
	delivery.ActualDeliveryTime = &dropoff
	if got := delivery.DeliveryDuration(); got != 45 {
		t.Fatalf("expected 45 minutes, got %d", got)
	}
}

func TestSuccessRate(t *testing.T) {
	provider := DeliveryProvider{}
	if got := provider.SuccessRate(); got != 0 {
		t.Fatalf("zero assignments must give 0, got %v", got)
	}

	provider.TotalDeliveries = 3
	provider.CompletedDeliveries = 2
	if got := provider.SuccessRate(); got != 66.67 {
		t.Fatalf("expected 66.67, got %v", got)
	}

	provider.TotalDeliveries = 4
	provider.CompletedDeliveries = 4
	if got := provider.SuccessRate(); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}
