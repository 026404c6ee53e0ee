package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estore/internal/models"
)

func TestApplyOrderStatusRequiresPaymentForShipped(t *testing.T) {
	now := time.Now()
	for _, target := range []string{models.OrderShipped, models.OrderDelivered} {
		order := models.Order{Status: models.OrderPending}
		err := applyOrderStatus(&order, target, "", "", nil, now)
		if err != errPaymentRequired {
			t.Fatalf("expected errPaymentRequired for %s on unpaid order, got %v", target, err)
		}
		if order.Status != models.OrderPending {
			t.Fatalf("status must not change on rejected transition, got %s", order.Status)
		}
	}
}

func TestApplyOrderStatusAllowsShippedWhenPaid(t *testing.T) {
	now := time.Now()
	order := models.Order{Status: models.OrderProcessing, IsPaid: true}

	if err := applyOrderStatus(&order, models.OrderShipped, "", "", nil, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != models.OrderShipped {
		t.Fatalf("expected shipped, got %s", order.Status)
	}
	if order.IsDelivered {
		t.Fatal("shipped must not flip the delivered flag")
	}
}

func TestApplyOrderStatusDeliveredSetsDeliveryFlags(t *testing.T) {
	now := time.Now()
	order := models.Order{Status: models.OrderShipped, IsPaid: true}

	if err := applyOrderStatus(&order, models.OrderDelivered, "", "", nil, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.IsDelivered || order.DeliveredAt == nil {
		t.Fatal("expected delivered flags to be set")
	}
}

func TestApplyOrderStatusCancelDefaults(t *testing.T) {
	now := time.Now()
	adminID := primitive.NewObjectID()
	order := models.Order{Status: models.OrderPending}

	if err := applyOrderStatus(&order, models.OrderCancelled, "", "", &adminID, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Cancellation == nil {
		t.Fatal("expected cancellation sub-document")
	}
	if order.Cancellation.CancelledBy != "admin" {
		t.Fatalf("expected default cancelledBy=admin, got %s", order.Cancellation.CancelledBy)
	}
	if order.Cancellation.Reason != "No reason provided" {
		t.Fatalf("expected default reason, got %q", order.Cancellation.Reason)
	}
	if order.Cancellation.CancelledByUser == nil || *order.Cancellation.CancelledByUser != adminID {
		t.Fatal("expected cancelledByUser to carry the actor id")
	}
}

func TestApplyOrderStatusRejectsUnknownStatus(t *testing.T) {
	order := models.Order{Status: models.OrderPending}
	if err := applyOrderStatus(&order, "refunded", "", "", nil, time.Now()); err != errUnknownStatus {
		t.Fatalf("expected errUnknownStatus, got %v", err)
	}
}

func TestBuildOrderFromRequestValidation(t *testing.T) {
	userID := primitive.NewObjectID()
	validItem := createOrderItemRequest{
		Product:  primitive.NewObjectID().Hex(),
		Name:     "Widget",
		Quantity: 2,
		Price:    50,
	}

	tests := []struct {
		name    string
		req     createOrderRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     createOrderRequest{PaymentMethod: models.PaymentCard},
			wantErr: errNoOrderItems,
		},
		{
			name: "bad payment method",
			req: createOrderRequest{
				OrderItems:    []createOrderItemRequest{validItem},
				PaymentMethod: "bitcoin",
			},
			wantErr: errInvalidPaymentMethod,
		},
		{
			name: "delivery without street",
			req: createOrderRequest{
				OrderItems:        []createOrderItemRequest{validItem},
				PaymentMethod:     models.PaymentCOD,
				FulfillmentMethod: models.FulfillmentDelivery,
			},
			wantErr: errAddressRequired,
		},
		{
			name: "zero quantity",
			req: createOrderRequest{
				OrderItems: []createOrderItemRequest{{
					Product:  primitive.NewObjectID().Hex(),
					Name:     "Widget",
					Quantity: 0,
				}},
				PaymentMethod:     models.PaymentCard,
				FulfillmentMethod: models.FulfillmentCollection,
			},
			wantErr: errInvalidQuantity,
		},
		{
			name: "bad product id",
			req: createOrderRequest{
				OrderItems: []createOrderItemRequest{{
					Product:  "not-an-id",
					Name:     "Widget",
					Quantity: 1,
				}},
				PaymentMethod:     models.PaymentCard,
				FulfillmentMethod: models.FulfillmentCollection,
			},
			wantErr: errInvalidProductID,
		},
	}

	for _, tc := range tests {
		if _, err := buildOrderFromRequest(tc.req, userID); err != tc.wantErr {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestBuildOrderFromRequestDefaults(t *testing.T) {
	userID := primitive.NewObjectID()
	order, err := buildOrderFromRequest(createOrderRequest{
		OrderItems: []createOrderItemRequest{{
			Product:  primitive.NewObjectID().Hex(),
			Name:     "Widget",
			Quantity: 1,
			Price:    10,
		}},
		PaymentMethod: models.PaymentEFT,
		ShippingAddress: models.ShippingAddress{
			Street: "1 Main Rd",
			City:   "Cape Town",
		},
	}, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.FulfillmentMethod != models.FulfillmentDelivery {
		t.Fatalf("expected fulfillment to default to delivery, got %s", order.FulfillmentMethod)
	}
	if order.Status != models.OrderPending {
		t.Fatalf("new orders must start pending, got %s", order.Status)
	}
	if order.CODPaymentStatus != models.CODPending {
		t.Fatalf("expected cod sub-status pending, got %s", order.CODPaymentStatus)
	}
	if order.IsPaid {
		t.Fatal("new orders must not be paid")
	}
}

func TestRequirePaymentMethodRejectsMismatch(t *testing.T) {
	tests := []struct {
		name    string
		have    string
		want    string
		wantErr bool
	}{
		{"cod confirm on eft order", models.PaymentEFT, models.PaymentCOD, true},
		{"cod confirm on card order", models.PaymentCard, models.PaymentCOD, true},
		{"eft verify on cod order", models.PaymentCOD, models.PaymentEFT, true},
		{"eft proof on paypal order", models.PaymentPayPal, models.PaymentEFT, true},
		{"cod confirm on cod order", models.PaymentCOD, models.PaymentCOD, false},
		{"eft verify on eft order", models.PaymentEFT, models.PaymentEFT, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := models.Order{PaymentMethod: tc.have}
			err := requirePaymentMethod(order, tc.want)
			if tc.wantErr && err == nil {
				t.Fatal("expected wrong-method rejection")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRequirePaymentMethodLeavesOrderUntouched(t *testing.T) {
	order := models.Order{PaymentMethod: models.PaymentCard, Status: models.OrderPending}

	_ = requirePaymentMethod(order, models.PaymentCOD)

	if order.IsPaid || order.Status != models.OrderPending {
		t.Fatal("rejection must not mutate the order")
	}
}
