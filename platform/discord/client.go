/*
client.go - Chat platform REST client

PURPOSE:
  The handful of platform REST calls this bot makes outside the
  interaction request/response cycle:
  - publish the claim panel message to a channel
  - add the customer role to a guild member (the entitlement grant)
  - overwrite the guild's slash-command set at startup
  - edit the original response of a deferred interaction

ERROR DISCIPLINE:
  Non-2xx responses surface as *APIError with status and endpoint for
  the operator log. Bodies are never propagated to end users.
*/
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the production platform API.
const DefaultBaseURL = "https://discord.com/api/v10"

// APIError is a non-success platform response.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned %d for %s", e.Status, e.Endpoint)
}

// Config configures a Client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Token is the bot token.
	Token string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

// Client issues authenticated platform REST calls.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a platform client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, token: cfg.Token, http: httpClient}
}

// SendMessage publishes a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg Message) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	return c.do(ctx, http.MethodPost, endpoint, msg)
}

// AddMemberRole attaches a role to a guild member.
func (c *Client) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	endpoint := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s", c.baseURL, guildID, userID, roleID)
	return c.do(ctx, http.MethodPut, endpoint, nil)
}

// RegisterCommands overwrites the guild's slash-command set.
func (c *Client) RegisterCommands(ctx context.Context, appID, guildID string, cmds []ApplicationCommand) error {
	endpoint := fmt.Sprintf("%s/applications/%s/guilds/%s/commands", c.baseURL, appID, guildID)
	return c.do(ctx, http.MethodPut, endpoint, cmds)
}

// EditOriginal replaces the original response of a deferred
// interaction.
func (c *Client) EditOriginal(ctx context.Context, appID, interactionToken string, msg Message) error {
	endpoint := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, appID, interactionToken)
	return c.do(ctx, http.MethodPatch, endpoint, msg)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}
	return nil
}
