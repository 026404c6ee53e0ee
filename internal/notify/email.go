package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"estore/internal/models"
)

// Sender delivers transactional mail over plain SMTP. With no host
// configured every send is a logged no-op, which keeps local development
// working without a mail server.
type Sender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSender(host, port, username, password, from string) *Sender {
	return &Sender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *Sender) send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient email missing")
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{to}, msg)
}

// SendOrderStatusEmail tells the customer their order moved to a new status.
func (s *Sender) SendOrderStatusEmail(order models.Order, user models.User, status string) error {
	subject := fmt.Sprintf("Your order %s is now %s", shortOrderRef(order), status)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order %s has been updated to: %s.\n\nOrder total: %.2f\n\nThank you for shopping with us.",
		user.Name, shortOrderRef(order), status, order.TotalPrice,
	)
	if status == models.OrderCancelled && order.Cancellation != nil {
		body += fmt.Sprintf("\n\nCancellation reason: %s", order.Cancellation.Reason)
	}
	return s.send(user.Email, subject, body)
}

// SendPaymentConfirmationEmail confirms a received payment.
func (s *Sender) SendPaymentConfirmationEmail(order models.Order, user models.User) error {
	subject := fmt.Sprintf("Payment received for order %s", shortOrderRef(order))
	body := fmt.Sprintf(
		"Hi %s,\n\nWe have received your payment of %.2f for order %s (%s).\n\nYour order is now being processed.",
		user.Name, order.TotalPrice, shortOrderRef(order), strings.ToUpper(order.PaymentMethod),
	)
	return s.send(user.Email, subject, body)
}

func shortOrderRef(order models.Order) string {
	id := order.ID.Hex()
	if len(id) < 8 {
		return "#" + id
	}
	return "#" + strings.ToUpper(id[len(id)-8:])
}
