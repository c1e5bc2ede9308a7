package mails

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

func poundsFromCents(cents int64) string {
	return "£" + decimal.New(cents, -2).StringFixed(2)
}

// renderOrderConfirmation builds the plain-text confirmation body.
func renderOrderConfirmation(order *models.Order, frontendBaseURL string) Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for your order!\n\n")
	fmt.Fprintf(&b, "Order reference: %s\n\n", order.OrderNumber)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s  %s\n", item.Quantity, item.ProductName, poundsFromCents(item.LineTotalCents))
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", poundsFromCents(order.SubtotalCents))
	if order.DiscountCents > 0 {
		code := ""
		if order.DiscountCode != nil {
			code = " (" + *order.DiscountCode + ")"
		}
		fmt.Fprintf(&b, "Discount%s: -%s\n", code, poundsFromCents(order.DiscountCents))
	}
	if order.ShippingCents > 0 {
		fmt.Fprintf(&b, "Shipping: %s\n", poundsFromCents(order.ShippingCents))
	} else {
		fmt.Fprintf(&b, "Shipping: free\n")
	}
	fmt.Fprintf(&b, "Total: %s\n", poundsFromCents(order.TotalCents))

	if order.GiftMessage != nil && *order.GiftMessage != "" {
		fmt.Fprintf(&b, "\nGift message: %s\n", *order.GiftMessage)
	}
	if order.ShippingDate != nil {
		fmt.Fprintf(&b, "Requested shipping date: %s\n", order.ShippingDate.Format("2 January 2006"))
	}

	base := strings.TrimRight(frontendBaseURL, "/")
	fmt.Fprintf(&b, "\nTrack your order at %s/orders/%s\n", base, order.OrderNumber)

	return Message{
		To:      order.Email,
		Subject: fmt.Sprintf("Your CassPea order %s", order.OrderNumber),
		Body:    b.String(),
	}
}

// renderNewsletterWelcome builds the opt-in acknowledgement body.
func renderNewsletterWelcome(lead *models.Lead) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to the CassPea newsletter!\n\n")
	fmt.Fprintf(&b, "You'll be the first to hear about new flavours and seasonal boxes.\n")
	return Message{
		To:      lead.Email,
		Subject: "Welcome to CassPea",
		Body:    b.String(),
	}
}

// renderContactAcknowledgement builds the contact-form receipt body.
func renderContactAcknowledgement(lead *models.Lead) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for getting in touch.\n\n")
	fmt.Fprintf(&b, "We've received your message and will reply within two working days.\n")
	if lead.Subject != nil && *lead.Subject != "" {
		fmt.Fprintf(&b, "\nYour subject: %s\n", *lead.Subject)
	}
	return Message{
		To:      lead.Email,
		Subject: "We received your message",
		Body:    b.String(),
	}
}
