/*
invoice.go - Storefront invoice model

PURPOSE:
  The slice of the SellAuth invoice object this bot reads. The invoice
  lifecycle is owned entirely by the storefront; this system only reads
  a snapshot at resolution or view time and never caches it.
*/
package sellauth

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a read-only snapshot of a storefront invoice.
type Invoice struct {
	ID       int64  `json:"id"`
	UniqueID string `json:"unique_id"`
	Status   string `json:"status"`
	Email    string `json:"email"`

	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`

	Product *Product `json:"product"`
	Variant *Variant `json:"variant"`
	Coupon  *Coupon  `json:"coupon"`

	// CustomFields holds buyer-supplied checkout fields.
	CustomFields map[string]string `json:"custom_fields"`

	// Gateway is the payment gateway tag (e.g. "STRIPE", "CASHAPP").
	// The matching transaction-reference field below is populated per
	// gateway; the rest are empty.
	Gateway              string `json:"gateway"`
	CashAppTransactionID string `json:"cashapp_transaction_id"`
	StripePaymentIntent  string `json:"stripe_pi_id"`
	PayPalFFNote         string `json:"paypalff_note"`
	SumUpCheckoutID      string `json:"sumup_checkout_id"`
	MollieTransactionID  string `json:"mollie_transaction_id"`
	SkrillTransactionID  string `json:"skrill_transaction_id"`

	// Delivered is the delivered-content payload, usually a JSON array
	// of strings but occasionally a plain string.
	Delivered string `json:"delivered"`

	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is nil until the invoice is paid.
	CompletedAt *time.Time `json:"completed_at"`
}

// Completed reports whether the invoice has been paid.
func (i *Invoice) Completed() bool {
	return i.CompletedAt != nil
}

// Product is the purchased product, as named by the storefront.
type Product struct {
	Name string `json:"name"`
}

// Variant is the purchased product variant.
type Variant struct {
	Name string `json:"name"`
}

// Coupon is the coupon applied at checkout, if any.
type Coupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	// Type is "percentage" or "fixed".
	Type     string `json:"type"`
	Currency string `json:"currency"`
}
