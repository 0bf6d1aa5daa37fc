/*
interaction.go - Inbound interaction payloads and responses

PURPOSE:
  The platform delivers every slash command, button press, and modal
  submission as a signed POST to the interactions endpoint. These are
  the wire types for those requests and for the synchronous responses
  the bot returns.
*/
package bot

import "github.com/vendra/claim-engine/platform/discord"

// Interaction types.
const (
	InteractionPing             = 1
	InteractionCommand          = 2
	InteractionMessageComponent = 3
	InteractionModalSubmit      = 5
)

// Response types.
const (
	ResponsePong            = 1
	ResponseChannelMessage  = 4
	ResponseDeferredMessage = 5
	ResponseModal           = 9
)

// Interaction is an inbound interaction payload.
type Interaction struct {
	Type      int             `json:"type"`
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	GuildID   string          `json:"guild_id"`
	ChannelID string          `json:"channel_id"`
	Member    *Member         `json:"member"`
	Data      InteractionData `json:"data"`
}

// Member is the invoking guild member.
type Member struct {
	User  User     `json:"user"`
	Roles []string `json:"roles"`
}

// User is the invoking user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// InteractionData carries the command-, component-, or modal-specific
// payload.
type InteractionData struct {
	// Command
	Name    string              `json:"name"`
	Options []InteractionOption `json:"options"`

	// Component / modal
	CustomID   string              `json:"custom_id"`
	Components []discord.Component `json:"components"`
}

// InteractionOption is a submitted slash-command option.
type InteractionOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UserID returns the invoking user's id, empty if absent.
func (i *Interaction) UserID() string {
	if i.Member == nil {
		return ""
	}
	return i.Member.User.ID
}

// Roles returns the invoking member's role ids.
func (i *Interaction) Roles() []string {
	if i.Member == nil {
		return nil
	}
	return i.Member.Roles
}

// Option returns the named command option's value, empty if absent.
func (i *Interaction) Option(name string) string {
	for _, o := range i.Data.Options {
		if o.Name == name {
			return o.Value
		}
	}
	return ""
}

// ModalValue returns the value of the text input with the given custom
// id from a modal submission, empty if absent.
func (i *Interaction) ModalValue(customID string) string {
	for _, row := range i.Data.Components {
		for _, c := range row.Components {
			if c.CustomID == customID {
				return c.Value
			}
		}
	}
	return ""
}

// Response is the synchronous reply to an interaction.
type Response struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the reply payload: a message for ResponseChannelMessage
// and ResponseDeferredMessage, a modal for ResponseModal.
type ResponseData struct {
	discord.Message

	// Modal
	CustomID string `json:"custom_id,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Ephemeral builds a user-only text reply.
func Ephemeral(content string) *Response {
	return &Response{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Message: discord.Message{Content: content, Flags: discord.FlagEphemeral}},
	}
}

// Deferred acks the interaction within the platform deadline; the real
// reply follows via an edit of the original response.
func Deferred() *Response {
	return &Response{
		Type: ResponseDeferredMessage,
		Data: &ResponseData{Message: discord.Message{Flags: discord.FlagEphemeral}},
	}
}
