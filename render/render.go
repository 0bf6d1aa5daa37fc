/*
Package render formats storefront invoices for display.

PURPOSE:
  Turns a fetched invoice into a map of named field values and expands
  operator-configured templates containing {token} placeholders. Pure
  and side-effect-free; the claim core has no dependency on this
  package.

TOKENS:
  {unique_id} {status} {product_name} {variant_name} {price} {currency}
  {coupon} {email} {custom_fields} {gateway} {gateway_info} {delivered}
  {ip} {user_agent} {created_at_timestamp} {completed_at}

GATEWAY INFO:
  A pure lookup keyed by the gateway tag. Unrecognized gateways and
  absent transaction data both render as "N/A".
*/
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vendra/claim-engine/sellauth"
)

const notApplicable = "N/A"

// FieldValues maps every supported token (without braces) to its
// rendered value for the given invoice.
func FieldValues(inv *sellauth.Invoice) map[string]string {
	return map[string]string{
		"unique_id":            inv.UniqueID,
		"status":               strings.ReplaceAll(inv.Status, "_", " "),
		"product_name":         productName(inv),
		"variant_name":         variantName(inv),
		"price":                inv.Price.String(),
		"currency":             inv.Currency,
		"coupon":               FormatCoupon(inv.Coupon),
		"email":                inv.Email,
		"custom_fields":        FormatCustomFields(inv.CustomFields),
		"gateway":              inv.Gateway,
		"gateway_info":         GatewayInfo(inv),
		"delivered":            FormatDelivered(inv.Delivered),
		"ip":                   inv.IP,
		"user_agent":           inv.UserAgent,
		"created_at_timestamp": strconv.FormatInt(inv.CreatedAt.Unix(), 10),
		"completed_at":         completedAt(inv),
	}
}

// Expand substitutes {token} placeholders in template with the given
// values. Unknown tokens are left untouched.
func Expand(template string, values map[string]string) string {
	out := template
	for token, value := range values {
		out = strings.ReplaceAll(out, "{"+token+"}", value)
	}
	return out
}

// FormatCoupon renders a coupon as `CODE (amount)`, with a percent sign
// for percentage coupons and the coupon currency for fixed ones.
func FormatCoupon(c *sellauth.Coupon) string {
	if c == nil {
		return notApplicable
	}
	var suffix string
	switch c.Type {
	case "percentage":
		suffix = "%"
	case "fixed":
		suffix = c.Currency
	}
	return fmt.Sprintf("%s (%s%s)", c.Code, c.Discount.String(), suffix)
}

// FormatCustomFields renders checkout fields as `key: "value"` pairs,
// sorted by key for stable output.
func FormatCustomFields(fields map[string]string) string {
	if len(fields) == 0 {
		return notApplicable
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s: %q", k, fields[k])
	}
	return strings.Join(pairs, ", ")
}

// FormatDelivered renders the delivered-content payload. The storefront
// usually stores a JSON array of strings; anything else is shown as-is.
func FormatDelivered(delivered string) string {
	if delivered == "" {
		return notApplicable
	}
	var items []string
	if err := json.Unmarshal([]byte(delivered), &items); err == nil {
		return strings.Join(items, ", ")
	}
	return delivered
}

// gatewayFormatters keys gateway-specific transaction references by the
// gateway tag. Absent data renders as "N/A".
var gatewayFormatters = map[string]func(*sellauth.Invoice) string{
	"CASHAPP": func(inv *sellauth.Invoice) string {
		id := inv.CashAppTransactionID
		if id == "" {
			id = notApplicable
		}
		return fmt.Sprintf("Transaction ID: %q", id)
	},
	"STRIPE": func(inv *sellauth.Invoice) string {
		if inv.StripePaymentIntent == "" {
			return notApplicable
		}
		url := "https://dashboard.stripe.com/payments/" + inv.StripePaymentIntent
		return fmt.Sprintf("[%s](%s)", url, url)
	},
	"PAYPALFF": func(inv *sellauth.Invoice) string {
		if inv.PayPalFFNote == "" {
			return notApplicable
		}
		return fmt.Sprintf("Note: %q", inv.PayPalFFNote)
	},
	"SUMUP": func(inv *sellauth.Invoice) string {
		if inv.SumUpCheckoutID == "" {
			return notApplicable
		}
		return fmt.Sprintf("Checkout ID: %q", inv.SumUpCheckoutID)
	},
	"MOLLIE": func(inv *sellauth.Invoice) string {
		if inv.MollieTransactionID == "" {
			return notApplicable
		}
		return fmt.Sprintf("Payment ID: %q", inv.MollieTransactionID)
	},
	"SKRILL": func(inv *sellauth.Invoice) string {
		if inv.SkrillTransactionID == "" {
			return notApplicable
		}
		return fmt.Sprintf("Transaction ID: %q", inv.SkrillTransactionID)
	},
}

// GatewayInfo renders the gateway-specific transaction reference.
func GatewayInfo(inv *sellauth.Invoice) string {
	format, ok := gatewayFormatters[inv.Gateway]
	if !ok {
		return notApplicable
	}
	return format(inv)
}

func productName(inv *sellauth.Invoice) string {
	if inv.Product == nil || inv.Product.Name == "" {
		return notApplicable
	}
	return inv.Product.Name
}

func variantName(inv *sellauth.Invoice) string {
	if inv.Variant == nil || inv.Variant.Name == "" {
		return notApplicable
	}
	return inv.Variant.Name
}

// completedAt renders the chat platform's long-format timestamp token,
// or "N/A" while the invoice is unpaid.
func completedAt(inv *sellauth.Invoice) string {
	if inv.CompletedAt == nil {
		return notApplicable
	}
	return fmt.Sprintf("<t:%d:F>", inv.CompletedAt.Unix())
}
