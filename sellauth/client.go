/*
client.go - SellAuth storefront API client

PURPOSE:
  Read and advance invoices on the storefront, scoped to one shop and
  authenticated with a bearer credential.

OUTCOME MAPPING:
  Invoice (GET /shops/{shop}/invoices/{id}):
    404         -> claim.ErrInvoiceNotFound (expected, not operational)
    other non-2xx, transport -> *APIError / wrapped transport error

  ProcessInvoice (GET /shops/{shop}/invoices/{id}/process):
    200 -> ProcessOK
    404 -> ProcessNotFound
    400 -> ProcessAlreadyDone
    other -> error

ERROR DISCIPLINE:
  Errors carry status and endpoint for the operator log. Response bodies
  are never propagated to callers that talk to end users.

SEE ALSO:
  - claim/resolver.go: Consumes Invoice via the lookup contract
  - render:            Formats the full record for display
*/
package sellauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vendra/claim-engine/claim"
)

// DefaultBaseURL is the production storefront API.
const DefaultBaseURL = "https://api.sellauth.com/v1"

// ProcessResult is the outcome of an invoice processing trigger.
type ProcessResult string

const (
	// ProcessOK: the storefront accepted the trigger.
	ProcessOK ProcessResult = "ok"
	// ProcessNotFound: no invoice exists for the key.
	ProcessNotFound ProcessResult = "not_found"
	// ProcessAlreadyDone: the invoice was already processed.
	ProcessAlreadyDone ProcessResult = "already_processed"
)

// APIError is a non-success storefront response.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront returned %d for %s", e.Status, e.Endpoint)
}

// Config configures a Client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// ShopID scopes every request to one shop.
	ShopID string
	// APIKey is the bearer credential.
	APIKey string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

// Client talks to the storefront API for a single shop.
type Client struct {
	baseURL string
	shopID  string
	apiKey  string
	http    *http.Client
}

// New creates a storefront client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		shopID:  cfg.ShopID,
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}
}

// Invoice fetches the invoice for a canonical key. A 404 maps to
// claim.ErrInvoiceNotFound; any other failure is operational.
func (c *Client) Invoice(ctx context.Context, key claim.InvoiceKey) (*Invoice, error) {
	endpoint := fmt.Sprintf("%s/shops/%s/invoices/%s", c.baseURL, c.shopID, key)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, claim.ErrInvoiceNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}

	var inv Invoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode invoice %s: %w", key, err)
	}
	return &inv, nil
}

// ProcessInvoice triggers processing of an invoice on the storefront.
func (c *Client) ProcessInvoice(ctx context.Context, key claim.InvoiceKey) (ProcessResult, error) {
	endpoint := fmt.Sprintf("%s/shops/%s/invoices/%s/process", c.baseURL, c.shopID, key)

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return ProcessOK, nil
	case http.StatusNotFound:
		return ProcessNotFound, nil
	case http.StatusBadRequest:
		return ProcessAlreadyDone, nil
	default:
		return "", &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request failed: %w", err)
	}
	return resp, nil
}

// =============================================================================
// RESOLVER ADAPTER
// =============================================================================

// Lookup adapts Client to the resolver's claim.InvoiceLookup contract.
type Lookup struct {
	Client *Client
}

// Fetch returns the ownership/payment slice of the invoice. NotFound is
// a normal outcome, not an error.
func (l Lookup) Fetch(ctx context.Context, key claim.InvoiceKey) (*claim.InvoiceRecord, bool, error) {
	inv, err := l.Client.Invoice(ctx, key)
	if err != nil {
		if claim.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &claim.InvoiceRecord{Email: inv.Email, CompletedAt: inv.CompletedAt}, true, nil
}
