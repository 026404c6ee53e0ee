package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsSingletonKey is the discriminator value enforcing a single settings
// document per deployment.
const SettingsSingletonKey = "settings"

// Settings is the site-wide configuration singleton. Absence means "use
// defaults"; the document is lazily materialized on first read or write.
type Settings struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// General
	SiteName  string `bson:"siteName" json:"siteName"`
	SiteEmail string `bson:"siteEmail" json:"siteEmail"`
	Currency  string `bson:"currency" json:"currency"`
	Timezone  string `bson:"timezone" json:"timezone"`
	Language  string `bson:"language" json:"language"`

	// Email
	SMTPHost         string `bson:"smtpHost" json:"smtpHost"`
	SMTPPort         int    `bson:"smtpPort" json:"smtpPort"`
	SMTPUsername     string `bson:"smtpUsername" json:"smtpUsername"`
	SMTPPassword     string `bson:"smtpPassword" json:"smtpPassword"`
	EmailFromName    string `bson:"emailFromName" json:"emailFromName"`
	EmailFromAddress string `bson:"emailFromAddress" json:"emailFromAddress"`

	// Payment
	StripeEnabled        bool   `bson:"stripeEnabled" json:"stripeEnabled"`
	StripePublishableKey string `bson:"stripePublishableKey" json:"stripePublishableKey"`
	StripeSecretKey      string `bson:"stripeSecretKey" json:"stripeSecretKey"`
	PayPalEnabled        bool   `bson:"paypalEnabled" json:"paypalEnabled"`
	PayPalClientID       string `bson:"paypalClientId" json:"paypalClientId"`
	PayPalClientSecret   string `bson:"paypalClientSecret" json:"paypalClientSecret"`

	// Bank details for EFT payment
	BankName          string `bson:"bankName" json:"bankName"`
	BankAccountName   string `bson:"bankAccountName" json:"bankAccountName"`
	BankAccountNumber string `bson:"bankAccountNumber" json:"bankAccountNumber"`
	BankBranchCode    string `bson:"bankBranchCode" json:"bankBranchCode"`
	BankAccountType   string `bson:"bankAccountType" json:"bankAccountType"`
	BankSwiftCode     string `bson:"bankSwiftCode" json:"bankSwiftCode"`
	BankReference     string `bson:"bankReference" json:"bankReference"`

	// Security
	TwoFactorAuth      bool   `bson:"twoFactorAuth" json:"twoFactorAuth"`
	MaintenanceMode    bool   `bson:"maintenanceMode" json:"maintenanceMode"`
	MaintenanceMessage string `bson:"maintenanceMessage" json:"maintenanceMessage"`

	// Notifications
	OrderNotifications  bool `bson:"orderNotifications" json:"orderNotifications"`
	LowStockAlerts      bool `bson:"lowStockAlerts" json:"lowStockAlerts"`
	LowStockThreshold   int  `bson:"lowStockThreshold" json:"lowStockThreshold"`
	ReviewNotifications bool `bson:"reviewNotifications" json:"reviewNotifications"`

	// Feature toggles
	EnableReviews       bool `bson:"enableReviews" json:"enableReviews"`
	EnableWishlist      bool `bson:"enableWishlist" json:"enableWishlist"`
	EnableGuestCheckout bool `bson:"enableGuestCheckout" json:"enableGuestCheckout"`

	// SEO
	MetaTitle       string `bson:"metaTitle" json:"metaTitle"`
	MetaDescription string `bson:"metaDescription" json:"metaDescription"`
	MetaKeywords    string `bson:"metaKeywords" json:"metaKeywords"`

	// Social media
	FacebookURL  string `bson:"facebookUrl" json:"facebookUrl"`
	TwitterURL   string `bson:"twitterUrl" json:"twitterUrl"`
	InstagramURL string `bson:"instagramUrl" json:"instagramUrl"`
	LinkedInURL  string `bson:"linkedinUrl" json:"linkedinUrl"`

	Singleton string    `bson:"singleton" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings returns the document written on first access or reset.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		SiteName:            "EStore",
		SiteEmail:           "admin@estore.com",
		Currency:            "ZAR",
		Timezone:            "Africa/Johannesburg",
		Language:            "English",
		SMTPPort:            587,
		EmailFromName:       "EStore",
		EmailFromAddress:    "noreply@estore.com",
		MaintenanceMessage:  "We are currently performing maintenance. Please check back soon.",
		OrderNotifications:  true,
		LowStockAlerts:      true,
		LowStockThreshold:   10,
		ReviewNotifications: true,
		EnableReviews:       true,
		EnableWishlist:      true,
		EnableGuestCheckout: true,
		MetaTitle:           "EStore - Your Online Shopping Destination",
		MetaDescription:     "Shop the latest products at great prices",
		MetaKeywords:        "ecommerce, online shopping, products",
		Singleton:           SettingsSingletonKey,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
