package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsSessionsCollection is the Mongo namespace for sessions. The unique
// sessionId index lives on the same name; keep reads, writes and index
// creation on this constant.
const AnalyticsSessionsCollection = "analyticssessions"

type PageView struct {
	Page      string    `bson:"page" json:"page"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type ProductView struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

type ProductInterest struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	ViewCount   int                `bson:"viewCount" json:"viewCount"`
}

type CategoryInterest struct {
	Category  string `bson:"category" json:"category"`
	ViewCount int    `bson:"viewCount" json:"viewCount"`
}

type Interests struct {
	TopProducts   []ProductInterest  `bson:"topProducts" json:"topProducts"`
	TopCategories []CategoryInterest `bson:"topCategories" json:"topCategories"`
}

// AnalyticsSession records one browsing visit keyed by a client-generated
// session token. Sessions are never deleted; historical aggregation depends
// on them.
type AnalyticsSession struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SessionID        string              `bson:"sessionId" json:"sessionId"`
	UserID           *primitive.ObjectID `bson:"userId" json:"userId"`
	IsRegistered     bool                `bson:"isRegistered" json:"isRegistered"`
	DeviceID         string              `bson:"deviceId,omitempty" json:"deviceId,omitempty"`
	UserAgent        string              `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Referrer         string              `bson:"referrer,omitempty" json:"referrer,omitempty"`
	StartTime        time.Time           `bson:"startTime" json:"startTime"`
	EndTime          *time.Time          `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Duration         int64               `bson:"duration" json:"duration"` // seconds
	PageViews        []PageView          `bson:"pageViews" json:"pageViews"`
	TotalPages       int                 `bson:"totalPages" json:"totalPages"`
	ProductViews     []ProductView       `bson:"productViews" json:"productViews"`
	CategoriesViewed []string            `bson:"categoriesViewed" json:"categoriesViewed"`
	Interests        Interests           `bson:"interests" json:"interests"`
	EntryPage        string              `bson:"entryPage,omitempty" json:"entryPage,omitempty"`
	ExitPage         string              `bson:"exitPage,omitempty" json:"exitPage,omitempty"`
	IsActive         bool                `bson:"isActive" json:"isActive"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Touch refreshes endTime and the derived duration. Duration is the floor of
// the elapsed whole seconds, so it never decreases across successive events.
func (s *AnalyticsSession) Touch(now time.Time) {
	s.EndTime = &now
	if now.After(s.StartTime) {
		s.Duration = int64(now.Sub(s.StartTime) / time.Second)
	}
}

// AddPageView appends to the page-view log. The first entry fixes the entry
// page; every entry overwrites the exit page.
func (s *AnalyticsSession) AddPageView(page string, now time.Time) {
	s.PageViews = append(s.PageViews, PageView{Page: page, Timestamp: now})
	s.TotalPages = len(s.PageViews)
	if len(s.PageViews) == 1 {
		s.EntryPage = page
	}
	s.ExitPage = page
}

// AddProductView appends to the product-view log, dedupes the category set
// and recomputes the interest rankings.
func (s *AnalyticsSession) AddProductView(productID primitive.ObjectID, name, category string, now time.Time) {
	s.ProductViews = append(s.ProductViews, ProductView{
		ProductID:   productID,
		ProductName: name,
		Category:    category,
		Timestamp:   now,
	})

	if category != "" && !containsString(s.CategoriesViewed, category) {
		s.CategoriesViewed = append(s.CategoriesViewed, category)
	}

	s.UpdateInterests()
}

// UpdateInterests rescans the full product-view log, grouping by product and
// by category, keeping the top 10 products and top 5 categories by count.
// Ties keep first-seen order, which makes replays of the same view sequence
// deterministic.
func (s *AnalyticsSession) UpdateInterests() {
	productOrder := make([]string, 0, len(s.ProductViews))
	productCounts := make(map[string]*ProductInterest)
	categoryOrder := make([]string, 0, len(s.ProductViews))
	categoryCounts := make(map[string]*CategoryInterest)

	for _, view := range s.ProductViews {
		key := view.ProductID.Hex()
		if entry, ok := productCounts[key]; ok {
			entry.ViewCount++
		} else {
			productCounts[key] = &ProductInterest{
				ProductID:   view.ProductID,
				ProductName: view.ProductName,
				ViewCount:   1,
			}
			productOrder = append(productOrder, key)
		}

		if view.Category == "" {
			continue
		}
		if entry, ok := categoryCounts[view.Category]; ok {
			entry.ViewCount++
		} else {
			categoryCounts[view.Category] = &CategoryInterest{Category: view.Category, ViewCount: 1}
			categoryOrder = append(categoryOrder, view.Category)
		}
	}

	topProducts := make([]ProductInterest, 0, len(productOrder))
	for _, key := range productOrder {
		topProducts = append(topProducts, *productCounts[key])
	}
	sort.SliceStable(topProducts, func(i, j int) bool {
		return topProducts[i].ViewCount > topProducts[j].ViewCount
	})
	if len(topProducts) > 10 {
		topProducts = topProducts[:10]
	}

	topCategories := make([]CategoryInterest, 0, len(categoryOrder))
	for _, key := range categoryOrder {
		topCategories = append(topCategories, *categoryCounts[key])
	}
	sort.SliceStable(topCategories, func(i, j int) bool {
		return topCategories[i].ViewCount > topCategories[j].ViewCount
	})
	if len(topCategories) > 5 {
		topCategories = topCategories[:5]
	}

	s.Interests = Interests{TopProducts: topProducts, TopCategories: topCategories}
}

// End closes the session: final endTime/duration refresh and isActive off.
func (s *AnalyticsSession) End(now time.Time) {
	s.Touch(now)
	s.IsActive = false
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
