/*
handler.go - Interaction dispatch

PURPOSE:
  Owns the command registry and routes each inbound interaction to the
  right handler. Matches the platform's dispatch model:
  - slash commands dispatch by command name
  - component and modal interactions are offered to each command that
    opts in, first taker wins

REGISTRY:
  Commands are registered once at construction into a static map; no
  reflection, no runtime discovery.

ERROR HANDLING:
  A command error is logged with detail and answered with a generic
  ephemeral notice. No internal detail ever reaches the user.

SEE ALSO:
  - server.go:     Router and signature verification
  - claimpanel.go, invoiceprocess.go, invoiceview.go: Commands
*/
package bot

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/config"
	"github.com/vendra/claim-engine/platform/discord"
	"github.com/vendra/claim-engine/sellauth"
)

// Command is a user-invocable slash command.
type Command interface {
	// Definition describes the command for registration.
	Definition() discord.ApplicationCommand

	// Execute handles an invocation. A returned error is logged and
	// answered with a generic failure notice.
	Execute(ctx context.Context, inter *Interaction) (*Response, error)
}

// InteractionHandler is implemented by commands that own follow-up
// components or modals.
type InteractionHandler interface {
	// HandleInteraction handles a component or modal interaction.
	// handled=false passes the interaction to the next command.
	HandleInteraction(ctx context.Context, inter *Interaction) (resp *Response, handled bool, err error)
}

// Handler dispatches interactions to commands.
type Handler struct {
	cfg        config.Config
	appID      string
	platform   *discord.Client
	storefront *sellauth.Client
	resolver   *claim.Resolver
	logger     *log.Logger

	commands map[string]Command
	ordered  []Command
}

// NewHandler wires the command registry.
func NewHandler(cfg config.Config, appID string, platform *discord.Client, storefront *sellauth.Client, resolver *claim.Resolver, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		cfg:        cfg,
		appID:      appID,
		platform:   platform,
		storefront: storefront,
		resolver:   resolver,
		logger:     logger,
		commands:   make(map[string]Command),
	}

	h.register(&claimPanelCommand{h: h})
	h.register(&invoiceProcessCommand{h: h})
	h.register(&invoiceViewCommand{h: h})
	return h
}

func (h *Handler) register(cmd Command) {
	h.commands[cmd.Definition().Name] = cmd
	h.ordered = append(h.ordered, cmd)
}

// Definitions returns every command definition for registration.
func (h *Handler) Definitions() []discord.ApplicationCommand {
	defs := make([]discord.ApplicationCommand, len(h.ordered))
	for i, cmd := range h.ordered {
		defs[i] = cmd.Definition()
	}
	return defs
}

// allowed checks the static admin allow-list.
func (h *Handler) allowed(inter *Interaction) bool {
	return h.cfg.Allowed(inter.UserID(), inter.Roles())
}

// genericError is the catch-all user notice; detail stays in the log.
const genericError = "There was an error executing this command!"

// HandleInteractions is the POST /interactions endpoint. The signature
// middleware has already authenticated the request.
func (h *Handler) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	var inter Interaction
	if err := json.NewDecoder(r.Body).Decode(&inter); err != nil {
		http.Error(w, "invalid interaction payload", http.StatusBadRequest)
		return
	}

	switch inter.Type {
	case InteractionPing:
		writeResponse(w, &Response{Type: ResponsePong})

	case InteractionCommand:
		cmd, ok := h.commands[inter.Data.Name]
		if !ok {
			h.logger.Printf("bot: no command matching %q", inter.Data.Name)
			http.Error(w, "unknown command", http.StatusBadRequest)
			return
		}
		resp, err := cmd.Execute(r.Context(), &inter)
		if err != nil {
			h.logger.Printf("bot: command %q failed: %v", inter.Data.Name, err)
			resp = Ephemeral(genericError)
		}
		writeResponse(w, resp)

	case InteractionMessageComponent, InteractionModalSubmit:
		for _, cmd := range h.ordered {
			ih, ok := cmd.(InteractionHandler)
			if !ok {
				continue
			}
			resp, handled, err := ih.HandleInteraction(r.Context(), &inter)
			if !handled {
				continue
			}
			if err != nil {
				h.logger.Printf("bot: interaction %q failed: %v", inter.Data.CustomID, err)
				resp = Ephemeral(genericError)
			}
			writeResponse(w, resp)
			return
		}
		h.logger.Printf("bot: unhandled interaction %q", inter.Data.CustomID)
		http.Error(w, "unknown interaction", http.StatusBadRequest)

	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
