package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"estore/internal/models"
)

var ordersCSVHeader = []string{
	"OrderID", "Date", "Customer", "Email", "Items",
	"PaymentMethod", "Fulfillment", "Status", "Total", "Paid", "PaidAt",
}

// OrdersCSV renders orders into a spreadsheet-friendly export. Unknown users
// show up with empty name/email columns rather than failing the export.
func OrdersCSV(orders []models.Order, users map[primitive.ObjectID]models.User) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(ordersCSVHeader); err != nil {
		return "", err
	}

	for _, order := range orders {
		user := users[order.UserID]

		paidAt := ""
		if order.PaidAt != nil {
			paidAt = order.PaidAt.Format("2006-01-02 15:04")
		}

		row := []string{
			order.ID.Hex(),
			order.CreatedAt.Format("2006-01-02 15:04"),
			user.Name,
			user.Email,
			summarizeItems(order.OrderItems),
			order.PaymentMethod,
			order.FulfillmentMethod,
			order.Status,
			fmt.Sprintf("%.2f", order.TotalPrice),
			fmt.Sprintf("%t", order.IsPaid),
			paidAt,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func summarizeItems(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, "; ")
}
