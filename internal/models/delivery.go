package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery job statuses.
const (
	DeliveryPending        = "pending"
	DeliveryAssigned       = "assigned"
	DeliveryAccepted       = "accepted"
	DeliveryPickedUp       = "picked_up"
	DeliveryInTransit      = "in_transit"
	DeliveryOutForDelivery = "out_for_delivery"
	DeliveryDelivered      = "delivered"
	DeliveryFailed         = "failed"
	DeliveryCancelled      = "cancelled"
	DeliveryReturned       = "returned"
)

// Provider response states on an assigned job.
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
	ResponseIgnored  = "ignored"
)

// Delivery priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PriorityRank maps a priority to a sortable weight so urgent jobs surface
// first in Mongo sorts. Unknown values rank below low.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type DeliveryAddress struct {
	Street   string `bson:"street" json:"street"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state" json:"state"`
	ZipCode  string `bson:"zipCode" json:"zipCode"`
	Landmark string `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

type DeliveryCustomer struct {
	Name    string          `bson:"name" json:"name"`
	Phone   string          `bson:"phone" json:"phone"`
	Email   string          `bson:"email,omitempty" json:"email,omitempty"`
	Address DeliveryAddress `bson:"address" json:"address"`
}

type PackageDimensions struct {
	Length float64 `bson:"length,omitempty" json:"length,omitempty"`
	Width  float64 `bson:"width,omitempty" json:"width,omitempty"`
	Height float64 `bson:"height,omitempty" json:"height,omitempty"`
}

type PackageItem struct {
	Name     string `bson:"name" json:"name"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

type PackageDetails struct {
	Description string            `bson:"description,omitempty" json:"description,omitempty"`
	Weight      float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Dimensions  PackageDimensions `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Value       float64           `bson:"value,omitempty" json:"value,omitempty"`
	Items       []PackageItem     `bson:"items,omitempty" json:"items,omitempty"`
}

type TrackingLocation struct {
	Latitude  float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// TrackingEntry rows are append-only; the log is never rewritten.
type TrackingEntry struct {
	ID        string            `bson:"id" json:"id"`
	Status    string            `bson:"status" json:"status"`
	Location  *TrackingLocation `bson:"location,omitempty" json:"location,omitempty"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

// DeliveryNotification kinds: assigned, accepted, status_update, delivered,
// cancelled.
type DeliveryNotification struct {
	Type   string    `bson:"type" json:"type"`
	SentAt time.Time `bson:"sentAt" json:"sentAt"`
	Read   bool      `bson:"read" json:"read"`
}

type ProofOfDelivery struct {
	Signature  string `bson:"signature,omitempty" json:"signature,omitempty"`
	Photo      string `bson:"photo,omitempty" json:"photo,omitempty"`
	ReceivedBy string `bson:"receivedBy,omitempty" json:"receivedBy,omitempty"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Delivery defines a courier job dispatched against an order.
type Delivery struct {
	ID                    primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	OrderID               primitive.ObjectID     `bson:"orderId" json:"orderId"`
	DeliveryProvider      *primitive.ObjectID    `bson:"deliveryProvider" json:"deliveryProvider"`
	Customer              DeliveryCustomer       `bson:"customer" json:"customer"`
	PickupAddress         DeliveryAddress        `bson:"pickupAddress,omitempty" json:"pickupAddress,omitempty"`
	Status                string                 `bson:"status" json:"status"`
	Priority              string                 `bson:"priority" json:"priority"`
	PriorityRank          int                    `bson:"priorityRank" json:"-"`
	PackageDetails        PackageDetails         `bson:"packageDetails,omitempty" json:"packageDetails,omitempty"`
	DeliveryFee           float64                `bson:"deliveryFee" json:"deliveryFee"`
	EstimatedDeliveryTime *time.Time             `bson:"estimatedDeliveryTime,omitempty" json:"estimatedDeliveryTime,omitempty"`
	ActualPickupTime      *time.Time             `bson:"actualPickupTime,omitempty" json:"actualPickupTime,omitempty"`
	ActualDeliveryTime    *time.Time             `bson:"actualDeliveryTime,omitempty" json:"actualDeliveryTime,omitempty"`
	AssignedAt            *time.Time             `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	AcceptedAt            *time.Time             `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	ProviderResponse      string                 `bson:"providerResponse" json:"providerResponse"`
	RejectionReason       string                 `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	DeliveryNotes         string                 `bson:"deliveryNotes,omitempty" json:"deliveryNotes,omitempty"`
	ProofOfDelivery       *ProofOfDelivery       `bson:"proofOfDelivery,omitempty" json:"proofOfDelivery,omitempty"`
	Tracking              []TrackingEntry        `bson:"tracking" json:"tracking"`
	Notifications         []DeliveryNotification `bson:"notifications" json:"notifications"`
	CreatedAt             time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// AddTracking appends an audit row and mirrors its status into the job's
// top-level status.
func (d *Delivery) AddTracking(id, status string, location *TrackingLocation, notes string, now time.Time) {
	d.Tracking = append(d.Tracking, TrackingEntry{
		ID:        id,
		Status:    status,
		Location:  location,
		Notes:     notes,
		Timestamp: now,
	})
	d.Status = status
}

// AddNotification appends an unread notification row.
func (d *Delivery) AddNotification(kind string, now time.Time) {
	d.Notifications = append(d.Notifications, DeliveryNotification{
		Type:   kind,
		SentAt: now,
		Read:   false,
	})
}

// DeliveryDuration returns the pickup-to-delivery time in minutes, or -1 when
// either timestamp is missing.
func (d *Delivery) DeliveryDuration() int {
	if d.ActualDeliveryTime == nil || d.ActualPickupTime == nil {
		return -1
	}
	return int(d.ActualDeliveryTime.Sub(*d.ActualPickupTime).Round(time.Minute) / time.Minute)
}
