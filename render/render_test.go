package render_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vendra/claim-engine/render"
	"github.com/vendra/claim-engine/sellauth"
)

func sampleInvoice() *sellauth.Invoice {
	completed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &sellauth.Invoice{
		UniqueID:            "SHOP-0042",
		Status:              "completed_manual",
		Email:               "a@b.com",
		Price:               decimal.RequireFromString("19.99"),
		Currency:            "USD",
		Product:             &sellauth.Product{Name: "License"},
		Variant:             &sellauth.Variant{Name: "Lifetime"},
		Gateway:             "STRIPE",
		StripePaymentIntent: "pi_123",
		Delivered:           `["KEY-1","KEY-2"]`,
		IP:                  "203.0.113.7",
		UserAgent:           "Mozilla/5.0",
		CreatedAt:           time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		CompletedAt:         &completed,
	}
}

func TestFieldValues(t *testing.T) {
	values := render.FieldValues(sampleInvoice())

	assert.Equal(t, "SHOP-0042", values["unique_id"])
	assert.Equal(t, "completed manual", values["status"], "underscores become spaces")
	assert.Equal(t, "License", values["product_name"])
	assert.Equal(t, "Lifetime", values["variant_name"])
	assert.Equal(t, "19.99", values["price"])
	assert.Equal(t, "N/A", values["coupon"])
	assert.Equal(t, "KEY-1, KEY-2", values["delivered"])
	assert.Equal(t, "1772323200", values["created_at_timestamp"])
	assert.Equal(t, "<t:1773144000:F>", values["completed_at"])
}

func TestFieldValues_MissingOptionalData(t *testing.T) {
	inv := &sellauth.Invoice{UniqueID: "SHOP-0007", Status: "pending"}
	values := render.FieldValues(inv)

	assert.Equal(t, "N/A", values["product_name"])
	assert.Equal(t, "N/A", values["variant_name"])
	assert.Equal(t, "N/A", values["custom_fields"])
	assert.Equal(t, "N/A", values["delivered"])
	assert.Equal(t, "N/A", values["gateway_info"])
	assert.Equal(t, "N/A", values["completed_at"], "unpaid invoice has no completion time")
}

func TestExpand(t *testing.T) {
	values := map[string]string{"email": "a@b.com", "price": "19.99"}

	out := render.Expand("Paid {price} by {email} ({unknown})", values)
	assert.Equal(t, "Paid 19.99 by a@b.com ({unknown})", out, "unknown tokens left untouched")
}

func TestFormatCoupon(t *testing.T) {
	assert.Equal(t, "N/A", render.FormatCoupon(nil))

	percentage := &sellauth.Coupon{Code: "SAVE10", Discount: decimal.NewFromInt(10), Type: "percentage"}
	assert.Equal(t, "SAVE10 (10%)", render.FormatCoupon(percentage))

	fixed := &sellauth.Coupon{Code: "FIVEOFF", Discount: decimal.NewFromInt(5), Type: "fixed", Currency: "USD"}
	assert.Equal(t, "FIVEOFF (5USD)", render.FormatCoupon(fixed))
}

func TestFormatCustomFields(t *testing.T) {
	assert.Equal(t, "N/A", render.FormatCustomFields(nil))

	out := render.FormatCustomFields(map[string]string{"username": "neo", "hwid": "abc"})
	assert.Equal(t, `hwid: "abc", username: "neo"`, out, "sorted by key")
}

func TestFormatDelivered(t *testing.T) {
	assert.Equal(t, "N/A", render.FormatDelivered(""))
	assert.Equal(t, "KEY-1, KEY-2", render.FormatDelivered(`["KEY-1","KEY-2"]`))
	assert.Equal(t, "plain text delivery", render.FormatDelivered("plain text delivery"))
}

func TestGatewayInfo(t *testing.T) {
	cases := []struct {
		name string
		inv  *sellauth.Invoice
		want string
	}{
		{"stripe", &sellauth.Invoice{Gateway: "STRIPE", StripePaymentIntent: "pi_123"},
			"[https://dashboard.stripe.com/payments/pi_123](https://dashboard.stripe.com/payments/pi_123)"},
		{"stripe without intent", &sellauth.Invoice{Gateway: "STRIPE"}, "N/A"},
		{"cashapp", &sellauth.Invoice{Gateway: "CASHAPP", CashAppTransactionID: "tx9"}, `Transaction ID: "tx9"`},
		{"cashapp without id", &sellauth.Invoice{Gateway: "CASHAPP"}, `Transaction ID: "N/A"`},
		{"paypal note", &sellauth.Invoice{Gateway: "PAYPALFF", PayPalFFNote: "thanks"}, `Note: "thanks"`},
		{"sumup", &sellauth.Invoice{Gateway: "SUMUP", SumUpCheckoutID: "co1"}, `Checkout ID: "co1"`},
		{"mollie", &sellauth.Invoice{Gateway: "MOLLIE", MollieTransactionID: "tr1"}, `Payment ID: "tr1"`},
		{"skrill", &sellauth.Invoice{Gateway: "SKRILL", SkrillTransactionID: "sk1"}, `Transaction ID: "sk1"`},
		{"unknown gateway", &sellauth.Invoice{Gateway: "CRYPTO"}, "N/A"},
		{"no gateway", &sellauth.Invoice{}, "N/A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, render.GatewayInfo(tc.inv))
		})
	}
}
