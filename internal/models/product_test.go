package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTrackViewDedupesByDevice(t *testing.T) {
	product := Product{}

	if !product.TrackView("device-1") {
		t.Fatal("first view from a device must count")
	}
	if product.TrackView("device-1") {
		t.Fatal("second view from the same device must not count")
	}
	if !product.TrackView("device-2") {
		t.Fatal("view from a new device must count")
	}
	if product.Views != 2 {
		t.Fatalf("expected 2 views, got %d", product.Views)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	product := Product{}

	if !product.ToggleLike("device-1") {
		t.Fatal("first toggle must like")
	}
	if product.Likes != 1 {
		t.Fatalf("expected 1 like, got %d", product.Likes)
	}

	if product.ToggleLike("device-1") {
		t.Fatal("second toggle must unlike")
	}
	if product.Likes != 0 || len(product.LikedBy) != 0 {
		t.Fatalf("unlike must restore counters, likes=%d likedBy=%v", product.Likes, product.LikedBy)
	}
}

func TestAddReviewRecomputesMean(t *testing.T) {
	product := Product{}

	product.AddReview(Review{UserID: primitive.NewObjectID(), Rating: 5, CreatedAt: time.Now()})
	product.AddReview(Review{UserID: primitive.NewObjectID(), Rating: 2, CreatedAt: time.Now()})

	if product.NumReviews != 2 {
		t.Fatalf("expected 2 reviews, got %d", product.NumReviews)
	}
	if product.Rating != 3.5 {
		t.Fatalf("expected mean 3.5, got %v", product.Rating)
	}
}

func TestHasReviewFrom(t *testing.T) {
	userID := primitive.NewObjectID()
	product := Product{}
	product.AddReview(Review{UserID: userID, Rating: 4})

	if !product.HasReviewFrom(userID) {
		t.Fatal("expected existing review to be found")
	}
	if product.HasReviewFrom(primitive.NewObjectID()) {
		t.Fatal("unknown user must not have a review")
	}
}
