package checkout

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"bakery-menu-api/cart"
)

// Mode selects how the order reaches the customer
const (
	ModePickup   = "pickup"
	ModeDelivery = "delivery"
)

// ErrMissingField blocks dispatch when name or phone is empty
var ErrMissingField = errors.New("missing required field")

// Customer is the shopper filling in the checkout form
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Order is everything the composer needs to build one message
type Order struct {
	Items          []cart.Item
	Customer       Customer
	Mode           string
	Address        string
	Notes          string
	DeliveryCharge int
}

// ComposeMessage renders the order as the WhatsApp text body. The output
// is deterministic: lines follow cart order, never re-sorted, so the
// same cart and fields always produce byte-identical text.
func ComposeMessage(o Order) (string, error) {
	if strings.TrimSpace(o.Customer.Name) == "" || strings.TrimSpace(o.Customer.Phone) == "" {
		return "", ErrMissingField
	}

	var b strings.Builder
	b.WriteString("*New Order*\n\n")
	b.WriteString("*Customer:* " + o.Customer.Name + "\n")
	b.WriteString("*Phone:* " + o.Customer.Phone + "\n")

	if notes := strings.TrimSpace(o.Notes); notes != "" {
		b.WriteString("*Notes:* " + notes + "\n")
	}

	delivery := o.Mode == ModeDelivery
	if delivery && o.Address != "" {
		b.WriteString("*Address:* " + o.Address + "\n")
		b.WriteString("*Delivery:* Yes (+₹" + strconv.Itoa(o.DeliveryCharge) + ")\n")
	} else {
		b.WriteString("*Mode:* Dine-in / Takeaway\n")
	}

	b.WriteString("\n*Order Details:*\n")

	var subtotal float64
	for _, it := range o.Items {
		lineTotal := it.Price * float64(it.Quantity)
		subtotal += lineTotal

		portion := " (Full)"
		if it.Portion == cart.PortionHalf {
			portion = " (Half)"
		}
		b.WriteString("• " + strconv.Itoa(it.Quantity) + "x " + it.Name + portion +
			" - ₹" + formatAmount(lineTotal) + "\n")
		if it.Serves != "" {
			b.WriteString("   Serves: " + it.Serves + "\n")
		}
	}

	total := subtotal
	if delivery {
		total += float64(o.DeliveryCharge)
	}

	b.WriteString("\n*Subtotal:* ₹" + formatAmount(subtotal) + "\n")
	if delivery {
		b.WriteString("*Delivery Charge:* ₹" + strconv.Itoa(o.DeliveryCharge) + "\n")
	}
	b.WriteString("*Total:* ₹" + formatAmount(total) + "\n\nThank you!")

	return b.String(), nil
}

// OrderURL builds the wa.me deep link carrying the composed message as
// an encoded query parameter
func OrderURL(waNumber string, o Order) (string, error) {
	msg, err := ComposeMessage(o)
	if err != nil {
		return "", err
	}
	return "https://wa.me/" + waNumber + "?text=" + url.QueryEscape(msg), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
