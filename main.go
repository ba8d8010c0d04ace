package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	appBot "multipost-bot/bot"
	"multipost-bot/internal/auth"
	"multipost-bot/internal/broadcast"
	"multipost-bot/internal/config"
	"multipost-bot/internal/database"
	"multipost-bot/internal/handlers"
	"multipost-bot/internal/locales"
	"multipost-bot/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Open sqlite store, running migrations on the way
	store, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			sentry.CaptureException(err)
		}
	}()

	// Application lifecycle context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Raw telego bot instance
	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	// Role gate over the user repository
	gate, err := auth.NewGate(store)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create role gate: %v", err)
	}

	// Per-user conversation state
	sessions := session.NewManager()

	// Broadcast fan-out engine
	engine, err := broadcast.NewEngine(bot, store, store, cfg.MediaGroupQuietPeriod, cfg.Debug)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create broadcast engine: %v", err)
	}

	// Message handler with all dependencies
	messageHandler, err := handlers.NewMessageHandler(gate, store, store, store, store, sessions, engine, cfg.ChannelsPerPage)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create message handler: %v", err)
	}

	// Long polling update stream
	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	// Bot wrapper owning the update loop
	wrapper, err := appBot.New(appBot.BotDeps{
		Bot:         bot,
		UpdatesChan: updates,
		Handler:     messageHandler,
		Engine:      engine,
		Debug:       cfg.Debug,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	if err := wrapper.SetupCommands(ctx); err != nil {
		log.Printf("Failed to set bot commands: %v", err)
		sentry.CaptureException(err)
	}

	go wrapper.Start(ctx)

	// Wait for SIGINT/SIGTERM
	<-ctx.Done()

	log.Println("Shutting down bot...")
	wrapper.Stop()

	log.Println("Bot shutdown complete.")
}
