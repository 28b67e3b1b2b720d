// Package main is the entry point for the meeting reminder bot.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/meeting-reminder-bot/bot/internal/bot"
	"github.com/meeting-reminder-bot/bot/internal/calendar"
	"github.com/meeting-reminder-bot/bot/internal/config"
	"github.com/meeting-reminder-bot/bot/internal/notify"
	"github.com/meeting-reminder-bot/bot/internal/storage"
	"github.com/meeting-reminder-bot/bot/internal/web"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting meeting reminder bot (version: %s)...", version)

	// Initialize database
	db, err := storage.NewDB(cfg.DataDir + "/meeting-reminder-bot.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize repositories
	meetingRepo := storage.NewMeetingRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize calendar gateway
	gateway, err := calendar.NewGoogleGateway(ctx, []byte(cfg.ServiceAccountKey), cfg.CalendarID, cfg.LocationTH)
	if err != nil {
		log.Fatalf("Failed to connect to Google Calendar: %v", err)
	}

	// Initialize Telegram API
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	log.Printf("Authorized on Telegram account @%s", api.Self.UserName)

	// Initialize WebSocket hub
	hub := web.NewHub()
	go hub.Run()

	// Initialize core services
	formatter := bot.NewFormatter(cfg.LocationUA, cfg.LocationTH)
	engine := notify.NewEngine(gateway, meetingRepo, cfg.LocationTH)
	service := notify.NewService(
		engine,
		meetingRepo,
		settingsRepo,
		bot.NewNotifier(api),
		formatter,
		cfg.ReminderInterval,
	)
	service.SetBroadcaster(web.NewBroadcaster(hub))

	// Establish the initial snapshot before any cycle runs, so existing
	// meetings are not announced as new. A failure here is not fatal: the
	// engine keeps seeding silently until the first fetch succeeds.
	if err := service.Seed(ctx); err != nil {
		log.Printf("Warning: Initial calendar seed failed: %v", err)
	}

	// Start the refresh and reminder scheduler
	scheduler := notify.NewScheduler(service, cfg.RefreshInterval, cfg.ReminderInterval)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start the Telegram bot
	tgBot := bot.New(api, settingsRepo, meetingRepo, formatter, cfg.LocationTH)
	if err := tgBot.SetCommands(); err != nil {
		log.Printf("Warning: Failed to register bot commands: %v", err)
	}
	go tgBot.Run(ctx)

	// Create HTTP server for the dashboard API
	router := web.NewRouter(db, hub, meetingRepo, settingsRepo, cfg.LocationTH)
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Stopped")
}
