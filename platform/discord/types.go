/*
types.go - Chat platform wire types

PURPOSE:
  The subset of the platform's REST/interaction payloads this bot
  produces: messages, embeds, message components, modals, and
  application command definitions. Field names follow the platform
  wire format exactly.
*/
package discord

// =============================================================================
// MESSAGES AND EMBEDS
// =============================================================================

// Message is an outbound channel message or interaction reply payload.
type Message struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
	// Flags set to FlagEphemeral makes an interaction reply visible to
	// the invoking user only.
	Flags int `json:"flags,omitempty"`
}

// FlagEphemeral marks an interaction reply as visible only to the
// invoking user.
const FlagEphemeral = 1 << 6

// Embed is a rich message embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	// Timestamp is RFC3339.
	Timestamp string `json:"timestamp,omitempty"`
}

// EmbedField is a named field in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedMedia is an image or thumbnail reference.
type EmbedMedia struct {
	URL string `json:"url"`
}

// =============================================================================
// COMPONENTS
// =============================================================================

// Component types.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
	ComponentTextInput = 4
)

// Button styles.
const (
	ButtonPrimary = 1
)

// Text input styles.
const (
	TextInputShort = 1
)

// Component is a message or modal component. The platform uses one
// polymorphic object; unused fields are omitted per type.
type Component struct {
	Type       int         `json:"type"`
	Components []Component `json:"components,omitempty"`

	// Button / text input
	CustomID string `json:"custom_id,omitempty"`
	Label    string `json:"label,omitempty"`
	Style    int    `json:"style,omitempty"`

	// Text input
	Required bool `json:"required,omitempty"`

	// Modal submissions echo the entered value back here.
	Value string `json:"value,omitempty"`
}

// ActionRow wraps components in a row container.
func ActionRow(components ...Component) Component {
	return Component{Type: ComponentActionRow, Components: components}
}

// =============================================================================
// APPLICATION COMMANDS
// =============================================================================

// Command option types.
const (
	OptionString = 3
)

// ApplicationCommand is a slash-command definition for registration.
type ApplicationCommand struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []CommandOption `json:"options,omitempty"`
}

// CommandOption is a slash-command parameter.
type CommandOption struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
