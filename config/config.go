/*
Package config loads bot configuration.

PURPOSE:
  Two sources, split by sensitivity:
  - A YAML file holds everything an operator tunes: platform IDs,
    allow-lists, and every user-facing message and embed template.
  - Environment variables hold credentials (bot token, interaction
    public key, storefront API key) so they stay out of the file.

TEMPLATES:
  Message strings may contain {invoiceId} (claim/process messages) or
  any render token (invoice-view embed fields). Substitution happens at
  send time, never at load time.

DEFAULTS:
  Load starts from Default() and overlays the file, so a minimal file
  only has to set IDs and allow-lists.
*/
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Secrets are credentials read from the environment.
type Secrets struct {
	// BotToken authenticates platform REST calls.
	BotToken string `env:"BOT_TOKEN,required,notEmpty"`
	// PublicKey is the hex-encoded Ed25519 key interactions are signed
	// with.
	PublicKey string `env:"BOT_PUBLIC_KEY,required,notEmpty"`
	// AppID is the platform application id, used for command
	// registration and follow-up edits.
	AppID string `env:"BOT_APP_ID,required,notEmpty"`
	// StorefrontAPIKey is the SellAuth bearer credential.
	StorefrontAPIKey string `env:"SA_API_KEY,required,notEmpty"`
}

// LoadSecrets parses credentials from the environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Config is the operator-tunable configuration file.
type Config struct {
	// GuildID is the server the bot operates in.
	GuildID string `yaml:"guild_id"`
	// ShopID scopes storefront calls to one shop.
	ShopID string `yaml:"shop_id"`
	// TargetChannelID is where the claim panel is published.
	TargetChannelID string `yaml:"target_channel_id"`
	// CustomerRoleID is the role granted on a successful claim.
	CustomerRoleID string `yaml:"customer_role_id"`

	// AllowedUserIDs and AllowedRoleIDs form the static admin
	// allow-list: permission = membership in either.
	AllowedUserIDs []string `yaml:"allowed_user_ids"`
	AllowedRoleIDs []string `yaml:"allowed_role_ids"`

	ClaimPanel     ClaimPanel     `yaml:"claim_panel"`
	InvoiceProcess InvoiceProcess `yaml:"invoice_process"`
	InvoiceView    InvoiceView    `yaml:"invoice_view"`
}

// ClaimPanel configures the panel embed, the claim modal, and every
// claim outcome message.
type ClaimPanel struct {
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	ExampleInvoiceID string `yaml:"example_invoice_id"`
	Color            int    `yaml:"color"`
	ThumbnailURL     string `yaml:"thumbnail_url"`
	ImageURL         string `yaml:"image_url"`
	ButtonLabel      string `yaml:"button_label"`
	ModalTitle       string `yaml:"modal_title"`
	EmailLabel       string `yaml:"email_label"`
	InvoiceLabel     string `yaml:"invoice_label"`

	// PanelCreated confirms panel publication to the admin.
	PanelCreated string `yaml:"panel_created"`

	Messages ClaimMessages `yaml:"messages"`
}

// ClaimMessages are the per-outcome claim replies. {invoiceId} expands
// to the canonical invoice key.
type ClaimMessages struct {
	NoPermission    string `yaml:"no_permission"`
	ChannelNotFound string `yaml:"channel_not_found"`
	InvalidInvoice  string `yaml:"invalid_invoice"`
	InvoiceClaimed  string `yaml:"invoice_claimed"`
	InvoiceNotFound string `yaml:"invoice_not_found"`
	EmailMismatch   string `yaml:"email_mismatch"`
	InvoiceUnpaid   string `yaml:"invoice_unpaid"`
	RoleClaimed     string `yaml:"role_claimed"`
	GeneralError    string `yaml:"general_error"`
}

// InvoiceProcess configures the processing command's replies.
type InvoiceProcess struct {
	Embed EmbedTemplate `yaml:"embed"`

	NoPermission     string `yaml:"no_permission"`
	NoInvoice        string `yaml:"no_invoice"`
	AlreadyProcessed string `yaml:"already_processed"`
	GeneralError     string `yaml:"general_error"`
}

// InvoiceView configures the invoice detail embed.
type InvoiceView struct {
	Embed  EmbedTemplate `yaml:"embed"`
	Fields []EmbedField  `yaml:"fields"`

	NoPermission string `yaml:"no_permission"`
	NoInvoice    string `yaml:"no_invoice"`
	GeneralError string `yaml:"general_error"`
}

// EmbedTemplate is a configurable embed shell. Description may contain
// {invoice_id}.
type EmbedTemplate struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Color        int    `yaml:"color"`
	Timestamp    bool   `yaml:"timestamp"`
	ThumbnailURL string `yaml:"thumbnail_url"`
	ImageURL     string `yaml:"image_url"`
}

// EmbedField is a named field whose value is a render template.
type EmbedField struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Allowed reports whether a user passes the static admin allow-list:
// either the user id is listed or the user holds a listed role.
func (c *Config) Allowed(userID string, roleIDs []string) bool {
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	for _, role := range roleIDs {
		for _, id := range c.AllowedRoleIDs {
			if id == role {
				return true
			}
		}
	}
	return false
}

// Default returns a configuration with every message populated, so a
// minimal file only sets IDs and allow-lists.
func Default() Config {
	return Config{
		ClaimPanel: ClaimPanel{
			Title:            "Claim your customer role",
			Description:      "Click the button below and enter the email and invoice ID from your purchase.",
			ExampleInvoiceID: "SHOP-0042",
			Color:            0x5865F2,
			ButtonLabel:      "Claim",
			ModalTitle:       "Claim your role",
			EmailLabel:       "Purchase email",
			InvoiceLabel:     "Invoice ID",
			PanelCreated:     "Claim panel created.",
			Messages: ClaimMessages{
				NoPermission:    "You do not have permission to use this command.",
				ChannelNotFound: "The claim panel channel is not configured correctly.",
				InvalidInvoice:  "That invoice ID does not look valid. Check your receipt and try again.",
				InvoiceClaimed:  "Invoice `{invoiceId}` has already been claimed.",
				InvoiceNotFound: "No invoice `{invoiceId}` was found. Check your receipt and try again.",
				EmailMismatch:   "That email does not match the invoice.",
				InvoiceUnpaid:   "Invoice `{invoiceId}` has not been paid yet.",
				RoleClaimed:     "Invoice `{invoiceId}` verified. Your customer role has been granted!",
				GeneralError:    "Something went wrong processing your claim. Please try again later.",
			},
		},
		InvoiceProcess: InvoiceProcess{
			Embed: EmbedTemplate{
				Title:       "Invoice processed",
				Description: "Invoice `{invoice_id}` has been processed.",
				Color:       0x57F287,
				Timestamp:   true,
			},
			NoPermission:     "You do not have permission to use this command.",
			NoInvoice:        "No invoice `{invoice_id}` was found.",
			AlreadyProcessed: "That invoice has already been processed.",
			GeneralError:     "Something went wrong processing the invoice. Please try again later.",
		},
		InvoiceView: InvoiceView{
			Embed: EmbedTemplate{
				Title:     "Invoice details",
				Color:     0x5865F2,
				Timestamp: true,
			},
			Fields: []EmbedField{
				{Name: "Invoice", Value: "{unique_id} ({status})"},
				{Name: "Product", Value: "{product_name} - {variant_name}"},
				{Name: "Total", Value: "{price} {currency} (coupon: {coupon})"},
				{Name: "Email", Value: "{email}"},
				{Name: "Gateway", Value: "{gateway} - {gateway_info}"},
				{Name: "Delivered", Value: "{delivered}"},
				{Name: "Completed", Value: "{completed_at}"},
			},
			NoPermission: "You do not have permission to use this command.",
			NoInvoice:    "No invoice `{invoice_id}` was found.",
			GeneralError: "Something went wrong fetching the invoice. Please try again later.",
		},
	}
}

// Load reads the YAML file at path over Default(). A missing file is an
// error; an empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
