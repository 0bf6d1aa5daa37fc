/*
invoiceprocess.go - Invoice processing command

PURPOSE:
  /invoice-process <id> (admin-gated) triggers processing of an invoice
  on the storefront and reports success, not-found, or
  already-processed.

DEFERRAL:
  The storefront call can outlast the platform's synchronous reply
  deadline, so the command acks with a deferred ephemeral response and
  delivers the result by editing the original reply.
*/
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/platform/discord"
	"github.com/vendra/claim-engine/sellauth"
)

// followupTimeout bounds the storefront call plus the follow-up edit
// after the deferred ack.
const followupTimeout = 30 * time.Second

type invoiceProcessCommand struct {
	h *Handler
}

func (c *invoiceProcessCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Name:        "invoice-process",
		Description: "Process an invoice",
		Options: []discord.CommandOption{
			{
				Type:        discord.OptionString,
				Name:        "id",
				Description: "The invoice ID to process",
				Required:    true,
			},
		},
	}
}

func (c *invoiceProcessCommand) Execute(_ context.Context, inter *Interaction) (*Response, error) {
	// Ack now; the interaction request has already been answered by the
	// time the storefront call finishes.
	go c.process(inter)
	return Deferred(), nil
}

func (c *invoiceProcessCommand) process(inter *Interaction) {
	ctx, cancel := context.WithTimeout(context.Background(), followupTimeout)
	defer cancel()

	msg := c.result(ctx, inter)
	if err := c.h.platform.EditOriginal(ctx, c.h.appID, inter.Token, msg); err != nil {
		c.h.logger.Printf("bot: invoice-process follow-up failed: %v", err)
	}
}

func (c *invoiceProcessCommand) result(ctx context.Context, inter *Interaction) discord.Message {
	cfg := c.h.cfg.InvoiceProcess

	if !c.h.allowed(inter) {
		return discord.Message{Content: cfg.NoPermission}
	}

	rawID := inter.Option("id")
	key := claim.NormalizeReference(rawID)
	if key == "" {
		return discord.Message{Content: strings.ReplaceAll(cfg.NoInvoice, "{invoice_id}", rawID)}
	}

	result, err := c.h.storefront.ProcessInvoice(ctx, key)
	if err != nil {
		c.h.logger.Printf("bot: processing invoice %q failed: %v", key, err)
		return discord.Message{Content: cfg.GeneralError}
	}

	switch result {
	case sellauth.ProcessNotFound:
		return discord.Message{Content: strings.ReplaceAll(cfg.NoInvoice, "{invoice_id}", rawID)}
	case sellauth.ProcessAlreadyDone:
		return discord.Message{Content: cfg.AlreadyProcessed}
	}

	embed := discord.Embed{
		Title:       cfg.Embed.Title,
		Description: strings.ReplaceAll(cfg.Embed.Description, "{invoice_id}", rawID),
		Color:       cfg.Embed.Color,
	}
	if cfg.Embed.Timestamp {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if cfg.Embed.ThumbnailURL != "" {
		embed.Thumbnail = &discord.EmbedMedia{URL: cfg.Embed.ThumbnailURL}
	}
	if cfg.Embed.ImageURL != "" {
		embed.Image = &discord.EmbedMedia{URL: cfg.Embed.ImageURL}
	}

	return discord.Message{Embeds: []discord.Embed{embed}}
}
