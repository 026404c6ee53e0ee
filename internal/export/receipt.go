package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"estore/internal/models"
)

// OrderReceiptPDF renders a single-page A4 receipt. The QR code links back to
// the order page on the storefront.
func OrderReceiptPDF(order models.Order, user models.User, baseURL string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Order Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Order Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order ID: %s", order.ID.Hex()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Customer: %s (%s)", user.Name, user.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment: %s", strings.ToUpper(order.PaymentMethod)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", order.Status), "", 1, "L", false, 0, "")

	if order.FulfillmentMethod == models.FulfillmentDelivery {
		addr := order.ShippingAddress
		pdf.CellFormat(0, 6, fmt.Sprintf("Deliver to: %s, %s, %s %s",
			addr.Street, addr.City, addr.State, addr.ZipCode), "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Fulfillment: collection", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Line item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.OrderItems {
		pdf.CellFormat(90, 8, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", item.Price*float64(item.Quantity)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(150, 6, "Items", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", order.ItemsPrice), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 6, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", order.TaxPrice), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 6, "Shipping", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", order.ShippingPrice), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", order.TotalPrice), "", 1, "R", false, 0, "")

	if order.IsPaid && order.PaidAt != nil {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(0, 128, 0)
		pdf.CellFormat(0, 8, fmt.Sprintf("PAID on %s", order.PaidAt.Format("2006-01-02 15:04")), "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	if err := embedOrderQR(pdf, baseURL, order.ID.Hex()); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func embedOrderQR(pdf *gofpdf.Fpdf, baseURL, orderID string) error {
	link := fmt.Sprintf("%s/orders/%s", strings.TrimRight(baseURL, "/"), orderID)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("order-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("order-qr", 160, 255, 30, 30, false, opts, 0, "")

	pdf.SetY(287)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, link, "", 1, "R", false, 0, "")
	return pdf.Error()
}
