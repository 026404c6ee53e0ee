package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddPageViewEntryAndExitPages(t *testing.T) {
	now := time.Now()
	session := AnalyticsSession{StartTime: now}

	session.AddPageView("/home", now)
	session.AddPageView("/products", now.Add(time.Second))
	session.AddPageView("/cart", now.Add(2*time.Second))

	if session.EntryPage != "/home" {
		t.Fatalf("entry page must stay the first page, got %s", session.EntryPage)
	}
	if session.ExitPage != "/cart" {
		t.Fatalf("exit page must follow the last page, got %s", session.ExitPage)
	}
	if session.TotalPages != 3 {
		t.Fatalf("expected totalPages=3, got %d", session.TotalPages)
	}
}

func TestTouchDurationNeverDecreases(t *testing.T) {
	start := time.Now()
	session := AnalyticsSession{StartTime: start}

	last := int64(0)
	for _, elapsed := range []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond, 1900 * time.Millisecond, 5 * time.Second} {
		session.Touch(start.Add(elapsed))
		if session.Duration < last {
			t.Fatalf("duration decreased from %d to %d", last, session.Duration)
		}
		last = session.Duration
	}
	if session.Duration != 5 {
		t.Fatalf("expected floor seconds 5, got %d", session.Duration)
	}
}

func TestUpdateInterestsRankingAndTruncation(t *testing.T) {
	now := time.Now()
	session := AnalyticsSession{StartTime: now}

	popular := primitive.NewObjectID()
	session.AddProductView(popular, "Popular", "electronics", now)
	session.AddProductView(popular, "Popular", "electronics", now)
	session.AddProductView(popular, "Popular", "electronics", now)

	for i := 0; i < 12; i++ {
		session.AddProductView(primitive.NewObjectID(), "Other", "misc", now)
	}

	if len(session.Interests.TopProducts) != 10 {
		t.Fatalf("expected top products capped at 10, got %d", len(session.Interests.TopProducts))
	}
	if session.Interests.TopProducts[0].ProductID != popular {
		t.Fatal("most viewed product must rank first")
	}
	if session.Interests.TopProducts[0].ViewCount != 3 {
		t.Fatalf("expected 3 views, got %d", session.Interests.TopProducts[0].ViewCount)
	}
}

func TestUpdateInterestsCategoryCapAndDedupe(t *testing.T) {
	now := time.Now()
	session := AnalyticsSession{StartTime: now}

	categories := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, cat := range categories {
		session.AddProductView(primitive.NewObjectID(), "p", cat, now)
	}
	session.AddProductView(primitive.NewObjectID(), "p", "a", now)

	if len(session.Interests.TopCategories) != 5 {
		t.Fatalf("expected top categories capped at 5, got %d", len(session.Interests.TopCategories))
	}
	if session.Interests.TopCategories[0].Category != "a" {
		t.Fatalf("category with most views must rank first, got %s", session.Interests.TopCategories[0].Category)
	}

	seen := map[string]int{}
	for _, cat := range session.CategoriesViewed {
		seen[cat]++
	}
	if seen["a"] != 1 {
		t.Fatalf("categoriesViewed must be deduplicated, a appears %d times", seen["a"])
	}
}

func TestUpdateInterestsDeterministicOnReplay(t *testing.T) {
	now := time.Now()
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}

	build := func() AnalyticsSession {
		s := AnalyticsSession{StartTime: now}
		for _, id := range ids {
			s.AddProductView(id, "p", "cat", now)
		}
		return s
	}

	first := build()
	second := build()

	for i := range first.Interests.TopProducts {
		if first.Interests.TopProducts[i].ProductID != second.Interests.TopProducts[i].ProductID {
			t.Fatal("same view sequence must produce the same ranking")
		}
	}
}

func TestEndSessionClosesAndKeepsData(t *testing.T) {
	start := time.Now()
	session := AnalyticsSession{StartTime: start, IsActive: true}
	session.AddPageView("/home", start)

	session.End(start.Add(42 * time.Second))

	if session.IsActive {
		t.Fatal("ended session must not stay active")
	}
	if session.EndTime == nil {
		t.Fatal("expected endTime set")
	}
	if session.Duration != 42 {
		t.Fatalf("expected duration 42, got %d", session.Duration)
	}
	if session.TotalPages != 1 {
		t.Fatal("ending must not drop recorded page views")
	}
}

func TestAnalyticsSessionsCollectionName(t *testing.T) {
	// Session reads, writes and the unique sessionId index must all target
	// the same namespace or the dedupe guarantee silently disappears.
	if AnalyticsSessionsCollection != "analyticssessions" {
		t.Fatalf("unexpected collection name %q", AnalyticsSessionsCollection)
	}
}
