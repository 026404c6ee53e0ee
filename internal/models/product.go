package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is an embedded product review; at most one per user.
type Review struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"` // 1-5
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product defines the persisted catalog document.
type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	Category       primitive.ObjectID `bson:"category" json:"category"`
	Brand          string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Stock          int                `bson:"stock" json:"stock"`
	InStock        bool               `bson:"-" json:"inStock"`
	Images         StringList         `bson:"images" json:"images"`
	Reviews        []Review           `bson:"reviews" json:"reviews"`
	Rating         float64            `bson:"rating" json:"rating"`
	NumReviews     int                `bson:"numReviews" json:"numReviews"`
	IsFeatured     bool               `bson:"isFeatured" json:"isFeatured"`
	Discount       float64            `bson:"discount" json:"discount"` // percent, 0-100
	ContactNumber  string             `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	WhatsappNumber string             `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	Views          int                `bson:"views" json:"views"`
	Likes          int                `bson:"likes" json:"likes"`
	ViewedBy       []string           `bson:"viewedBy" json:"-"` // device fingerprints
	LikedBy        []string           `bson:"likedBy" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasReviewFrom reports whether the user already left a review.
func (p *Product) HasReviewFrom(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends the review and recomputes the mean rating and count.
func (p *Product) AddReview(review Review) {
	p.Reviews = append(p.Reviews, review)
	p.NumReviews = len(p.Reviews)

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(len(p.Reviews))
}

// TrackView counts one anonymous view per device fingerprint. Returns false
// when the device was already counted.
func (p *Product) TrackView(deviceID string) bool {
	if containsString(p.ViewedBy, deviceID) {
		return false
	}
	p.ViewedBy = append(p.ViewedBy, deviceID)
	p.Views++
	return true
}

// ToggleLike flips the like state for the device and returns the new liked
// flag. Toggling twice restores the original counters.
func (p *Product) ToggleLike(deviceID string) bool {
	for i, id := range p.LikedBy {
		if id == deviceID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			if p.Likes > 0 {
				p.Likes--
			}
			return false
		}
	}
	p.LikedBy = append(p.LikedBy, deviceID)
	p.Likes++
	return true
}
