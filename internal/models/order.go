package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle statuses.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment methods.
const (
	PaymentCard   = "card"
	PaymentPayPal = "paypal"
	PaymentCOD    = "cod"
	PaymentEFT    = "eft"
)

// COD payment sub-statuses.
const (
	CODPending  = "pending"
	CODReceived = "received"
	CODDenied   = "denied"
)

// Fulfillment methods.
const (
	FulfillmentDelivery   = "delivery"
	FulfillmentCollection = "collection"
)

// OrderItem is a line item snapshot taken at checkout time so later product
// edits never alter historical orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
}

type ShippingAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// PaymentResult is the opaque gateway payload stored on instant payments.
type PaymentResult struct {
	ID           string `bson:"id,omitempty" json:"id,omitempty"`
	Status       string `bson:"status,omitempty" json:"status,omitempty"`
	UpdateTime   string `bson:"update_time,omitempty" json:"update_time,omitempty"`
	EmailAddress string `bson:"email_address,omitempty" json:"email_address,omitempty"`
}

// PaymentProof holds the EFT proof-of-payment document awaiting admin
// verification.
type PaymentProof struct {
	URL        string              `bson:"url" json:"url"`
	UploadedAt time.Time           `bson:"uploadedAt" json:"uploadedAt"`
	Verified   bool                `bson:"verified" json:"verified"`
	VerifiedBy *primitive.ObjectID `bson:"verifiedBy,omitempty" json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
}

// Cancellation is populated only when an order reaches the cancelled status.
type Cancellation struct {
	CancelledBy     string              `bson:"cancelledBy" json:"cancelledBy"` // customer | admin
	CancelledByUser *primitive.ObjectID `bson:"cancelledByUser,omitempty" json:"cancelledByUser,omitempty"`
	Reason          string              `bson:"reason" json:"reason"`
	CancelledAt     time.Time           `bson:"cancelledAt" json:"cancelledAt"`
}

// Order defines the persisted order document.
type Order struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID  `bson:"user" json:"user"`
	OrderItems        []OrderItem         `bson:"orderItems" json:"orderItems"`
	FulfillmentMethod string              `bson:"fulfillmentMethod" json:"fulfillmentMethod"`
	ShippingAddress   ShippingAddress     `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	PaymentMethod     string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentResult     *PaymentResult      `bson:"paymentResult,omitempty" json:"paymentResult,omitempty"`
	PaymentProof      *PaymentProof       `bson:"paymentProof,omitempty" json:"paymentProof,omitempty"`
	CODPaymentStatus  string              `bson:"codPaymentStatus" json:"codPaymentStatus"`
	CODConfirmedBy    *primitive.ObjectID `bson:"codConfirmedBy,omitempty" json:"codConfirmedBy,omitempty"`
	CODConfirmedAt    *time.Time          `bson:"codConfirmedAt,omitempty" json:"codConfirmedAt,omitempty"`
	ItemsPrice        float64             `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice          float64             `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice     float64             `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice        float64             `bson:"totalPrice" json:"totalPrice"`
	IsPaid            bool                `bson:"isPaid" json:"isPaid"`
	PaidAt            *time.Time          `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	IsDelivered       bool                `bson:"isDelivered" json:"isDelivered"`
	DeliveredAt       *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	Status            string              `bson:"status" json:"status"`
	Cancellation      *Cancellation       `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MarkPaid flips the payment flags and advances a pending order into
// processing. Used by the instant gateways, COD receipt and EFT verification.
func (o *Order) MarkPaid(now time.Time) {
	o.IsPaid = true
	o.PaidAt = &now
	o.Status = OrderProcessing
}

// Cancel records the cancellation sub-document and moves the order to its
// terminal cancelled status.
func (o *Order) Cancel(actor string, actorID *primitive.ObjectID, reason string, now time.Time) {
	o.Status = OrderCancelled
	o.Cancellation = &Cancellation{
		CancelledBy:     actor,
		CancelledByUser: actorID,
		Reason:          reason,
		CancelledAt:     now,
	}
}
