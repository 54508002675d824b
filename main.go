package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"telegram-queue-bot/bot"
	"telegram-queue-bot/queue"
	"telegram-queue-bot/storage"

	"github.com/joho/godotenv"
	"github.com/mymmrac/telego"
)

func main() {
	// Parse command-line flags
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	flag.Parse()

	// Set up logging
	setLogLevel(*verbose, *veryVerbose)

	slog.Debug("main: Command-line flags parsed", "verbose", *verbose, "very_verbose", *veryVerbose)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("main: Failed to load .env file", "error", err)
	}

	// Get configuration from environment
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		slog.Error("main: TELEGRAM_BOT_TOKEN environment variable is required")
		os.Exit(1)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "queue.sqlite"
		slog.Debug("main: Using default database path", "path", dbPath)
	} else {
		slog.Debug("main: Using custom database path", "path", dbPath)
	}

	admins := parseAdmins(os.Getenv("ADMINS"))
	includeChatAdmins := parseBool(os.Getenv("INCLUDE_CHAT_ADMINS"), true)
	slog.Debug("main: Admin configuration", "admins", admins, "include_chat_admins", includeChatAdmins)

	// Initialize storage
	slog.Debug("main: Initializing storage", "db_path", dbPath)
	store, err := storage.New(dbPath)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Debug("main: Storage initialized successfully")

	// Initialize Telegram API client
	api, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		slog.Error("main: Failed to initialize Telegram API client", "error", err)
		os.Exit(1)
	}

	// Wire the queue core: display adapter, then the session registry
	display := bot.NewDisplay(api)
	queues := queue.NewRegistry(store, display, queue.DefaultInterval)

	// Start bot
	slog.Info("main: Starting bot...")
	b := bot.New(api, store, queues, display, admins, includeChatAdmins)
	if err := b.Run(); err != nil {
		slog.Error("main: Failed to run bot", "error", err)
		os.Exit(1)
	}
}

// parseAdmins reads the global allow-list of user IDs from a
// comma-separated string.
func parseAdmins(raw string) []int64 {
	var admins []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			slog.Warn("main: Skipping invalid admin ID", "value", part)
			continue
		}
		admins = append(admins, id)
	}
	return admins
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("main: Invalid boolean value, using default", "value", raw, "default", fallback)
		return fallback
	}
	return value
}

// setLogLevel configures the logging level based on the provided flags
func setLogLevel(verbose, veryVerbose bool) {
	// Determine logging level based on flags
	logLevel := slog.LevelWarn // Default level
	if veryVerbose {
		logLevel = slog.LevelDebug
	} else if verbose {
		logLevel = slog.LevelInfo
	}

	// Configure structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Debug("main: Log level set to", "level", logLevel.String())
}
