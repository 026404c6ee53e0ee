package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HeroBadge struct {
	Text            string `bson:"text" json:"text"`
	TextColor       string `bson:"textColor" json:"textColor"`
	BackgroundColor string `bson:"backgroundColor" json:"backgroundColor"`
}

type HeroHeading struct {
	MainText        string `bson:"mainText" json:"mainText"`
	HighlightedText string `bson:"highlightedText" json:"highlightedText"`
	GradientFrom    string `bson:"gradientFrom" json:"gradientFrom"`
	GradientTo      string `bson:"gradientTo" json:"gradientTo"`
}

type HeroButton struct {
	Text string `bson:"text" json:"text"`
	Link string `bson:"link" json:"link"`
}

// HeroBanner is the storefront hero section content.
type HeroBanner struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Badge           HeroBadge          `bson:"badge" json:"badge"`
	Heading         HeroHeading        `bson:"heading" json:"heading"`
	Description     string             `bson:"description" json:"description"`
	PrimaryButton   HeroButton         `bson:"primaryButton" json:"primaryButton"`
	SecondaryButton HeroButton         `bson:"secondaryButton" json:"secondaryButton"`
	HeroImage       string             `bson:"heroImage" json:"heroImage"`
	BackgroundColor string             `bson:"backgroundColor" json:"backgroundColor"`
	Active          bool               `bson:"active" json:"active"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
