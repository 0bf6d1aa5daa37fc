/*
invoiceview.go - Invoice detail command

PURPOSE:
  /invoice-view <id> (admin-gated) fetches the invoice from the
  storefront and renders the operator-configured embed fields through
  the render package's token substitution.
*/
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/platform/discord"
	"github.com/vendra/claim-engine/render"
)

type invoiceViewCommand struct {
	h *Handler
}

func (c *invoiceViewCommand) Definition() discord.ApplicationCommand {
	return discord.ApplicationCommand{
		Name:        "invoice-view",
		Description: "View invoice details",
		Options: []discord.CommandOption{
			{
				Type:        discord.OptionString,
				Name:        "id",
				Description: "The invoice ID to search for",
				Required:    true,
			},
		},
	}
}

func (c *invoiceViewCommand) Execute(ctx context.Context, inter *Interaction) (*Response, error) {
	cfg := c.h.cfg.InvoiceView

	if !c.h.allowed(inter) {
		return Ephemeral(cfg.NoPermission), nil
	}

	rawID := inter.Option("id")
	key := claim.NormalizeReference(rawID)
	if key == "" {
		return Ephemeral(strings.ReplaceAll(cfg.NoInvoice, "{invoice_id}", rawID)), nil
	}

	inv, err := c.h.storefront.Invoice(ctx, key)
	if err != nil {
		if claim.IsNotFound(err) {
			return Ephemeral(strings.ReplaceAll(cfg.NoInvoice, "{invoice_id}", rawID)), nil
		}
		c.h.logger.Printf("bot: fetching invoice %q failed: %v", key, err)
		return Ephemeral(cfg.GeneralError), nil
	}

	embed := discord.Embed{
		Title: cfg.Embed.Title,
		Color: cfg.Embed.Color,
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

	values := render.FieldValues(inv)
	for _, f := range cfg.Fields {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  f.Name,
			Value: render.Expand(f.Value, values),
		})
	}

	// Invoice details are posted publicly for the staff channel.
	return &Response{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Message: discord.Message{Embeds: []discord.Embed{embed}}},
	}, nil
}
