/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the invoice claim bot. Handles configuration,
  dependency injection, command registration, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load config file and environment credentials
  3. Open the claim ledger (file or sqlite)
  4. Wire storefront client, platform client, resolver, handler
  5. Register slash commands with the platform
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr     Listen address (default: :8080)
  -config   YAML config path (default: config.yml)
  -ledger   Ledger backend: file or sqlite (default: file)
  -claims   Ledger path (default: claims.json, or claims.db for sqlite)

ENVIRONMENT:
  BOT_TOKEN       Platform bot token
  BOT_PUBLIC_KEY  Hex Ed25519 key interactions are signed with
  BOT_APP_ID      Platform application id
  SA_API_KEY      Storefront bearer credential

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

SEE ALSO:
  - bot/server.go: Router configuration
  - config/config.go: File and env configuration
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vendra/claim-engine/bot"
	"github.com/vendra/claim-engine/claim"
	"github.com/vendra/claim-engine/config"
	"github.com/vendra/claim-engine/platform/discord"
	"github.com/vendra/claim-engine/sellauth"
	"github.com/vendra/claim-engine/store/file"
	"github.com/vendra/claim-engine/store/sqlite"
)

func main() {
	// Flags
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "config.yml", "YAML config path")
	backend := flag.String("ledger", "file", "ledger backend: file or sqlite")
	claimsPath := flag.String("claims", "", "ledger path (default claims.json or claims.db)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}
	publicKey, err := bot.ParsePublicKey(secrets.PublicKey)
	if err != nil {
		log.Fatalf("Invalid public key: %v", err)
	}

	// Ledger
	var ledger claim.Ledger
	switch *backend {
	case "file":
		path := *claimsPath
		if path == "" {
			path = "claims.json"
		}
		ledger, err = file.Open(path)
	case "sqlite":
		path := *claimsPath
		if path == "" {
			path = "claims.db"
		}
		var s *sqlite.Ledger
		s, err = sqlite.Open(path)
		if err == nil {
			defer s.Close()
			ledger = s
		}
	default:
		log.Fatalf("Unknown ledger backend: %s", *backend)
	}
	if err != nil {
		log.Fatalf("Failed to open claim ledger: %v", err)
	}

	// Collaborators
	platform := discord.New(discord.Config{Token: secrets.BotToken})
	storefront := sellauth.New(sellauth.Config{
		ShopID: cfg.ShopID,
		APIKey: secrets.StorefrontAPIKey,
	})
	resolver := claim.NewResolver(
		ledger,
		sellauth.Lookup{Client: storefront},
		bot.RoleGranter{Platform: platform, GuildID: cfg.GuildID, RoleID: cfg.CustomerRoleID},
		nil,
	)

	handler := bot.NewHandler(cfg, secrets.AppID, platform, storefront, resolver, nil)

	// Register slash commands. Failure is logged, not fatal - commands
	// from the previous deploy keep working.
	regCtx, regCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := platform.RegisterCommands(regCtx, secrets.AppID, cfg.GuildID, handler.Definitions()); err != nil {
		log.Printf("Warning: failed to register commands: %v", err)
	} else {
		log.Printf("Registered %d application commands", len(handler.Definitions()))
	}
	regCancel()

	router := bot.NewRouter(handler, publicKey)

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Interaction endpoint listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
