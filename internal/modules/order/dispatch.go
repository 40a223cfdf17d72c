package order

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

const (
	DefaultCountryCode = "91"
	DefaultTaxRate     = 0.05

	emptyCartMessage = "I'm interested in ordering from your menu"
	deepLinkBase     = "https://wa.me/"
)

// BuildOrderMessage renders the plain-text order summary sent to the partner.
// A zero taxRate leaves out the Total line.
func BuildOrderMessage(c *Cart, shopName string, taxRate float64) string {
	if c.TotalItems() == 0 {
		return emptyCartMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order from %s:\n\n", shopName)
	for _, e := range c.Entries() {
		fmt.Fprintf(&b, "%dx %s - ₹%s each\n", e.Quantity, e.Item.Name, strconv.FormatFloat(e.Item.Price, 'f', -1, 64))
	}
	fmt.Fprintf(&b, "\nSubtotal: ₹%.2f", c.TotalPrice())
	if taxRate > 0 {
		fmt.Fprintf(&b, "\nTotal: ₹%.2f", c.TotalPrice()*(1+taxRate))
	}
	b.WriteString("\n\nThank you!")
	return b.String()
}

// EncodeOrderMessage percent-encodes msg for a URL query value, leaving the
// characters A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped.
func EncodeOrderMessage(msg string) string {
	s := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return unreserved.Replace(s)
}

var unreserved = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// NormalizePhone reduces phone to international dialing digits. Numbers
// already carrying countryCode pass through, a leading trunk zero is replaced
// by countryCode and bare ten-digit numbers get countryCode prepended.
func NormalizePhone(phone, countryCode string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, countryCode) && len(digits) > 10:
		return digits
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case len(digits) == 10:
		return countryCode + digits
	default:
		return digits
	}
}

// BuildDeepLink returns the messaging URL that opens a chat with phone
// pre-filled with the already encoded text.
func BuildDeepLink(phone, encoded, countryCode string) (string, error) {
	digits := NormalizePhone(phone, countryCode)
	if digits == "" {
		return "", apperr.Validation("partner has no phone number")
	}
	return deepLinkBase + digits + "?text=" + encoded, nil
}
