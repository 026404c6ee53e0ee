package handlers

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estore/internal/models"
)

var (
	errPaymentRequired = errors.New("payment must be confirmed before approving delivery or collection, please confirm payment first")
	errUnknownStatus   = errors.New("invalid order status")

	errNoOrderItems         = errors.New("no order items")
	errInvalidPaymentMethod = errors.New("invalid payment method")
	errInvalidFulfillment   = errors.New("invalid fulfillment method")
	errAddressRequired      = errors.New("shipping address is required for delivery orders")
	errInvalidProductID     = errors.New("invalid product id")
	errInvalidQuantity      = errors.New("quantity must be greater than zero")
)

var paymentMethodLabels = map[string]string{
	models.PaymentCOD: "a COD",
	models.PaymentEFT: "an EFT",
}

// requirePaymentMethod guards the method-specific payment operations: a COD
// confirmation or an EFT proof must never touch an order paid another way.
func requirePaymentMethod(order models.Order, method string) error {
	if order.PaymentMethod == method {
		return nil
	}
	label := paymentMethodLabels[method]
	if label == "" {
		label = "a " + method
	}
	return fmt.Errorf("this order is not %s payment", label)
}

func isValidOrderStatus(status string) bool {
	switch status {
	case models.OrderPending, models.OrderProcessing, models.OrderShipped,
		models.OrderDelivered, models.OrderCancelled:
		return true
	}
	return false
}

// applyOrderStatus moves an order to the target status, enforcing the single
// guarded rule of the workflow: shipped and delivered require a confirmed
// payment. Delivered also flips the delivery flags; cancelled records the
// cancellation audit sub-document.
func applyOrderStatus(order *models.Order, target, cancelledBy, reason string, actorID *primitive.ObjectID, now time.Time) error {
	if !isValidOrderStatus(target) {
		return errUnknownStatus
	}

	if (target == models.OrderShipped || target == models.OrderDelivered) && !order.IsPaid {
		return errPaymentRequired
	}

	order.Status = target

	if target == models.OrderCancelled {
		if cancelledBy == "" {
			cancelledBy = "admin"
		}
		if reason == "" {
			reason = "No reason provided"
		}
		order.Cancel(cancelledBy, actorID, reason, now)
	}

	if target == models.OrderDelivered {
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	return nil
}
