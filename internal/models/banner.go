package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Banner is a marketing banner with optional date-windowed activation.
type Banner struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Subtitle        string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Image           string             `bson:"image" json:"image"`
	Link            string             `bson:"link" json:"link"`
	ButtonText      string             `bson:"buttonText" json:"buttonText"`
	Active          bool               `bson:"active" json:"active"`
	StartDate       *time.Time         `bson:"startDate" json:"startDate"`
	EndDate         *time.Time         `bson:"endDate" json:"endDate"`
	Order           int                `bson:"order" json:"order"`
	BackgroundColor string             `bson:"backgroundColor" json:"backgroundColor"`
	TextColor       string             `bson:"textColor" json:"textColor"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VisibleAt reports whether the banner should render at the given instant:
// active flag on and the instant inside the optional start/end window.
func (b *Banner) VisibleAt(now time.Time) bool {
	if !b.Active {
		return false
	}
	if b.StartDate != nil && now.Before(*b.StartDate) {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}
