package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendra/claim-engine/config"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	// A minimal file only sets IDs and allow-lists; message templates
	// fall back to defaults.

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
guild_id: "guild-1"
shop_id: "shop-1"
target_channel_id: "chan-1"
customer_role_id: "role-1"
allowed_user_ids: ["admin-1"]
allowed_role_ids: ["staff"]
claim_panel:
  title: "Custom title"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "guild-1", cfg.GuildID)
	assert.Equal(t, "Custom title", cfg.ClaimPanel.Title)
	assert.NotEmpty(t, cfg.ClaimPanel.Messages.NoPermission, "defaults preserved")
	assert.NotEmpty(t, cfg.InvoiceView.Fields)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestAllowed(t *testing.T) {
	cfg := config.Config{
		AllowedUserIDs: []string{"admin-1"},
		AllowedRoleIDs: []string{"staff", "mods"},
	}

	assert.True(t, cfg.Allowed("admin-1", nil), "listed user")
	assert.True(t, cfg.Allowed("user-2", []string{"member", "mods"}), "listed role")
	assert.False(t, cfg.Allowed("user-2", []string{"member"}))
	assert.False(t, cfg.Allowed("user-2", nil))
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token-1")
	t.Setenv("BOT_PUBLIC_KEY", "abcd")
	t.Setenv("BOT_APP_ID", "app-1")
	t.Setenv("SA_API_KEY", "key-1")

	s, err := config.LoadSecrets()
	require.NoError(t, err)
	assert.Equal(t, "token-1", s.BotToken)
	assert.Equal(t, "key-1", s.StorefrontAPIKey)
}

func TestLoadSecrets_MissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("BOT_PUBLIC_KEY", "")
	t.Setenv("BOT_APP_ID", "")
	t.Setenv("SA_API_KEY", "")

	_, err := config.LoadSecrets()
	assert.Error(t, err)
}
