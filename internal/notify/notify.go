package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/essentials-shop/storefront/internal/orders"
)

// Message is a fully formed notification; the core does not know the delivery
// transport.
type Message struct {
	Recipient string `json:"recipient"`
	ReplyTo   string `json:"reply_to"`
	Subject   string `json:"subject"`
	BodyHTML  string `json:"body_html"`
	BodyText  string `json:"body_text"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string, msg Message) error
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

type OrderSummary struct {
	OrderID       string
	CustomerName  string
	CustomerEmail string
	Shipping      orders.ShippingInfo
	PaymentMethod orders.PaymentMethod
	Lines         []orders.CartLine
	Total         decimal.Decimal
}

// BuildOrderConfirmation renders the order summary sent to the shop inbox when
// an order confirms, with the customer on Reply-To.
func BuildOrderConfirmation(recipient string, sum OrderSummary) Message {
	subject := fmt.Sprintf("New order %s from %s", sum.OrderID, sum.CustomerName)

	var h strings.Builder
	h.WriteString("<h2>New Order Received</h2>")
	fmt.Fprintf(&h, "<p><strong>Customer:</strong> %s</p>", html.EscapeString(sum.CustomerName))
	fmt.Fprintf(&h, "<p><strong>Email:</strong> %s</p>", html.EscapeString(sum.CustomerEmail))
	fmt.Fprintf(&h, "<p><strong>Shipping Address:</strong> %s, %s, %s</p>",
		html.EscapeString(sum.Shipping.Address), html.EscapeString(sum.Shipping.City), html.EscapeString(sum.Shipping.PostalCode))
	fmt.Fprintf(&h, "<p><strong>Payment Method:</strong> %s</p>", sum.PaymentMethod)
	h.WriteString("<h3>Items:</h3>")
	h.WriteString(`<table border="1" cellpadding="5" cellspacing="0" style="border-collapse: collapse;">`)
	h.WriteString("<tr><th>Product</th><th>Quantity</th><th>Price</th><th>Subtotal</th></tr>")

	var t strings.Builder
	fmt.Fprintf(&t, "New order %s from %s <%s>\n", sum.OrderID, sum.CustomerName, sum.CustomerEmail)
	fmt.Fprintf(&t, "Ship to: %s, %s, %s\n\n", sum.Shipping.Address, sum.Shipping.City, sum.Shipping.PostalCode)

	for _, l := range sum.Lines {
		subtotal := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(&h, "<tr><td>%s</td><td>%d</td><td>$%s</td><td>$%s</td></tr>",
			html.EscapeString(l.Name), l.Quantity, l.Price.StringFixed(2), subtotal.StringFixed(2))
		fmt.Fprintf(&t, "%s x%d @ $%s = $%s\n", l.Name, l.Quantity, l.Price.StringFixed(2), subtotal.StringFixed(2))
	}
	h.WriteString("</table>")
	fmt.Fprintf(&h, "<p><strong>Total:</strong> $%s</p>", sum.Total.StringFixed(2))
	fmt.Fprintf(&t, "Total: $%s\n", sum.Total.StringFixed(2))

	return Message{
		Recipient: recipient,
		ReplyTo:   sum.CustomerEmail,
		Subject:   subject,
		BodyHTML:  h.String(),
		BodyText:  t.String(),
	}
}

// BuildContactMessage renders a contact-form submission for the shop inbox,
// with the visitor on Reply-To.
func BuildContactMessage(recipient, name, email, body string) Message {
	var h strings.Builder
	h.WriteString("<h2>New Contact Form Message</h2>")
	fmt.Fprintf(&h, "<p><strong>Name:</strong> %s</p>", html.EscapeString(name))
	fmt.Fprintf(&h, "<p><strong>Email:</strong> %s</p>", html.EscapeString(email))
	fmt.Fprintf(&h, "<p><strong>Message:</strong></p><p>%s</p>", html.EscapeString(body))

	var t strings.Builder
	fmt.Fprintf(&t, "From: %s <%s>\n\n%s\n", name, email, body)

	return Message{
		Recipient: recipient,
		ReplyTo:   email,
		Subject:   fmt.Sprintf("New contact form message from %s", name),
		BodyHTML:  h.String(),
		BodyText:  t.String(),
	}
}
