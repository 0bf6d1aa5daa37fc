/*
reference.go - Invoice reference normalization

PURPOSE:
  Users paste invoice references in whatever form their receipt shows:
  the bare numeric id ("42"), a zero-padded id ("0042"), or the full
  order string ("SHOP-0042"). The storefront API and the claim ledger
  both key on the bare id, so every reference is normalized before it
  touches either.

ALGORITHM:
  1. If the reference contains the order delimiter '-', keep only the
     segment after the last occurrence.
  2. Strip leading '0' characters from the result.

INVARIANT:
  Normalization is idempotent: a canonical key normalizes to itself.

EDGE CASE:
  A reference that is empty, all zeros, or all delimiters collapses to
  the empty string. Callers must treat an empty key as invalid and never
  forward it to the ledger or the storefront.

SEE ALSO:
  - resolver.go: Rejects empty keys as InvalidReference
*/
package claim

import "strings"

// InvoiceKey is the canonical form of an invoice reference. It is the
// ledger's lookup key and the storefront lookup's path parameter.
type InvoiceKey string

// ClaimantID identifies the platform user who submitted a claim.
type ClaimantID string

// referenceDelimiter separates the shop prefix from the numeric tail in
// full order strings such as "SHOP-0042".
const referenceDelimiter = "-"

// NormalizeReference maps a raw, user-supplied invoice reference to its
// canonical key. Pure and total; the only failure signal is an empty
// result, which callers must reject.
func NormalizeReference(raw string) InvoiceKey {
	s := raw
	if i := strings.LastIndex(s, referenceDelimiter); i >= 0 {
		s = s[i+1:]
	}
	return InvoiceKey(strings.TrimLeft(s, "0"))
}
