/*
claimpanel.go - Claim panel command, button, and modal

PURPOSE:
  /claimpanel (admin-gated) publishes a persistent panel with a claim
  button to the configured channel. The button opens a modal asking for
  the purchase email and invoice id; the modal submission runs the
  claim resolver and replies with the configured outcome message.

FLOW:
  /claimpanel -> panel embed + button in target channel
  claim_button -> modal (email, invoice_id)
  claim_modal  -> resolver -> per-outcome ephemeral reply

MESSAGES:
  Every outcome maps to an operator-configured template; {invoiceId}
  expands to the canonical invoice key. LookupFailed and commit
  failures share the generic error template - detail is logged by the
  resolver, never shown.
*/
package bot

import (
	"context"
	"strings"

	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/platform/discord"
)

const (
	claimButtonID = "claim_button"
	claimModalID  = "claim_modal"

	claimEmailInputID   = "email"
	claimInvoiceInputID = "invoice_id"
)

type claimPanelCommand struct {
	h *Handler
}

func (c *claimPanelCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Name:        "claimpanel",
		Description: "Create a persistent claim panel (Admin only)",
	}
}

func (c *claimPanelCommand) Execute(ctx context.Context, inter *Interaction) (*Response, error) {
	cfg := c.h.cfg.ClaimPanel

	if !c.h.allowed(inter) {
		return Ephemeral(cfg.Messages.NoPermission), nil
	}
	if c.h.cfg.TargetChannelID == "" {
		return Ephemeral(cfg.Messages.ChannelNotFound), nil
	}

	embed := discord.Embed{
		Title:       cfg.Title,
		Description: cfg.Description + "\n\n**Example Invoice ID:** ``" + cfg.ExampleInvoiceID + "``",
		Color:       cfg.Color,
	}
	if strings.TrimSpace(cfg.ThumbnailURL) != "" {
		embed.Thumbnail = &discord.EmbedMedia{URL: cfg.ThumbnailURL}
	}
	if strings.TrimSpace(cfg.ImageURL) != "" {
		embed.Image = &discord.EmbedMedia{URL: cfg.ImageURL}
	}

	panel := discord.Message{
		Embeds: []discord.Embed{embed},
		Components: []discord.Component{
			discord.ActionRow(discord.Component{
				Type:     discord.ComponentButton,
				Style:    discord.ButtonPrimary,
				Label:    cfg.ButtonLabel,
				CustomID: claimButtonID,
			}),
		},
	}

	if err := c.h.platform.SendMessage(ctx, c.h.cfg.TargetChannelID, panel); err != nil {
		return nil, err
	}
	return Ephemeral(cfg.PanelCreated), nil
}

func (c *claimPanelCommand) HandleInteraction(ctx context.Context, inter *Interaction) (*Response, bool, error) {
	switch {
	case inter.Type == InteractionMessageComponent && inter.Data.CustomID == claimButtonID:
		return c.claimModal(), true, nil
	case inter.Type == InteractionModalSubmit && inter.Data.CustomID == claimModalID:
		return c.resolveClaim(ctx, inter), true, nil
	default:
		return nil, false, nil
	}
}

func (c *claimPanelCommand) claimModal() *Response {
	cfg := c.h.cfg.ClaimPanel
	return &Response{
		Type: ResponseModal,
		Data: &ResponseData{
			CustomID: claimModalID,
			Title:    cfg.ModalTitle,
			Message: discord.Message{
				Components: []discord.Component{
					discord.ActionRow(discord.Component{
						Type:     discord.ComponentTextInput,
						Style:    discord.TextInputShort,
						CustomID: claimEmailInputID,
						Label:    cfg.EmailLabel,
						Required: true,
					}),
					discord.ActionRow(discord.Component{
						Type:     discord.ComponentTextInput,
						Style:    discord.TextInputShort,
						CustomID: claimInvoiceInputID,
						Label:    cfg.InvoiceLabel,
						Required: true,
					}),
				},
			},
		},
	}
}

func (c *claimPanelCommand) resolveClaim(ctx context.Context, inter *Interaction) *Response {
	email := inter.ModalValue(claimEmailInputID)
	reference := inter.ModalValue(claimInvoiceInputID)

	res := c.h.resolver.Resolve(ctx, reference, email, claim.ClaimantID(inter.UserID()))
	return Ephemeral(c.outcomeMessage(res))
}

// outcomeMessage maps a resolution to its configured reply template.
func (c *claimPanelCommand) outcomeMessage(res claim.Resolution) string {
	msgs := c.h.cfg.ClaimPanel.Messages

	var template string
	switch res.Outcome {
	case claim.OutcomeInvalidReference:
		template = msgs.InvalidInvoice
	case claim.OutcomeAlreadyClaimed:
		template = msgs.InvoiceClaimed
	case claim.OutcomeInvoiceNotFound:
		template = msgs.InvoiceNotFound
	case claim.OutcomeEmailMismatch:
		template = msgs.EmailMismatch
	case claim.OutcomeInvoiceUnpaid:
		template = msgs.InvoiceUnpaid
	case claim.OutcomeClaimed:
		template = msgs.RoleClaimed
	default:
		// LookupFailed, LedgerCommitFailed: detail is already logged.
		template = msgs.GeneralError
	}

	return strings.ReplaceAll(template, "{invoiceId}", string(res.Key))
}

// RoleGranter grants the customer role via the platform REST API. It is
// the resolver's entitlement collaborator.
type RoleGranter struct {
	Platform *discord.Client
	GuildID  string
	RoleID   string
}

// Grant adds the configured role to the claimant. An unconfigured role
// id is a no-op, matching a shop that grants nothing beyond the ledger
// record.
func (g RoleGranter) Grant(ctx context.Context, claimant claim.ClaimantID) error {
	if g.RoleID == "" {
		return nil
	}
	return g.Platform.AddMemberRole(ctx, g.GuildID, string(claimant), g.RoleID)
}
