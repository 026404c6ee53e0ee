package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider approval statuses.
const (
	ProviderPending   = "pending"
	ProviderApproved  = "approved"
	ProviderSuspended = "suspended"
	ProviderRejected  = "rejected"
)

// Provider availability states.
const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	AvailabilityOffline   = "offline"
)

type ProviderAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

type ProviderDocuments struct {
	DrivingLicense      string `bson:"drivingLicense,omitempty" json:"drivingLicense,omitempty"`
	VehicleRegistration string `bson:"vehicleRegistration,omitempty" json:"vehicleRegistration,omitempty"`
	Insurance           string `bson:"insurance,omitempty" json:"insurance,omitempty"`
	ProfilePhoto        string `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
}

type ProviderBankDetails struct {
	AccountName   string `bson:"accountName,omitempty" json:"accountName,omitempty"`
	AccountNumber string `bson:"accountNumber,omitempty" json:"accountNumber,omitempty"`
	BankName      string `bson:"bankName,omitempty" json:"bankName,omitempty"`
	IFSCCode      string `bson:"ifscCode,omitempty" json:"ifscCode,omitempty"`
}

// DeliveryProvider is a courier onboarded through self-registration and
// dispatched by the admin-side delivery workflow.
type DeliveryProvider struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name                string              `bson:"name" json:"name"`
	Email               string              `bson:"email" json:"email"`
	Phone               string              `bson:"phone" json:"phone"`
	VehicleType         string              `bson:"vehicleType" json:"vehicleType"` // bike|motorcycle|car|van|truck
	VehicleNumber       string              `bson:"vehicleNumber" json:"vehicleNumber"`
	LicenseNumber       string              `bson:"licenseNumber" json:"licenseNumber"`
	Address             ProviderAddress     `bson:"address,omitempty" json:"address,omitempty"`
	Status              string              `bson:"status" json:"status"`
	Availability        string              `bson:"availability" json:"availability"`
	Rating              float64             `bson:"rating" json:"rating"`
	TotalDeliveries     int                 `bson:"totalDeliveries" json:"totalDeliveries"`
	CompletedDeliveries int                 `bson:"completedDeliveries" json:"completedDeliveries"`
	CancelledDeliveries int                 `bson:"cancelledDeliveries" json:"cancelledDeliveries"`
	Documents           ProviderDocuments   `bson:"documents,omitempty" json:"documents,omitempty"`
	BankDetails         ProviderBankDetails `bson:"bankDetails,omitempty" json:"bankDetails,omitempty"`
	ApprovedBy          *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectedReason      string              `bson:"rejectedReason,omitempty" json:"rejectedReason,omitempty"`
	IsActive            bool                `bson:"isActive" json:"isActive"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SuccessRate is completed over total deliveries as a percentage, rounded to
// two decimals. Zero assignments means zero rate.
func (p *DeliveryProvider) SuccessRate() float64 {
	if p.TotalDeliveries == 0 {
		return 0
	}
	rate := float64(p.CompletedDeliveries) / float64(p.TotalDeliveries) * 100
	return math.Round(rate*100) / 100
}
