package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velours-studio/reflet/internal/api"
	"github.com/velours-studio/reflet/internal/bus"
	"github.com/velours-studio/reflet/internal/completion"
	"github.com/velours-studio/reflet/internal/config"
	"github.com/velours-studio/reflet/internal/feedback"
	"github.com/velours-studio/reflet/internal/memory"
	"github.com/velours-studio/reflet/internal/orchestrator"
	"github.com/velours-studio/reflet/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("reflet starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional — without it profiles and records stay in memory)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without durable storage")
	}

	// Completion service (optional — fallback responses without it)
	var comp *completion.Client
	if cfg.CompletionURL != "" {
		comp = completion.NewClient(cfg.CompletionURL, cfg.CompletionAPIKey)
		slog.Info("completion client ready", "url", cfg.CompletionURL)
	} else {
		slog.Warn("COMPLETION_URL not set — serving fallback responses only")
	}

	// NATS (optional — HTTP-only operation without it)
	var busClient *bus.Client
	if cfg.NatsURL != "" {
		var err error
		busClient, err = bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer busClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	mem := memory.NewStore(slog.Default())
	if db != nil {
		mem.SetLoader(func(userID string) *memory.Profile {
			p, err := db.GetProfile(ctx, userID)
			if err != nil {
				slog.Error("failed to load profile", "user_id", userID, "error", err)
				return nil
			}
			return p
		})
	}
	engine := feedback.NewEngine(feedback.NewRandSource(), slog.Default())
	engine.SetTTL(cfg.FeedbackTTL)

	orch := orchestrator.New(mem, engine, comp, db, busClient, slog.Default())
	orch.SetCompletionTimeout(cfg.CompletionTimeout)
	orch.SetDiagInterval(cfg.DiagInterval)

	if busClient != nil {
		if err := busClient.Subscribe(bus.SubjectExchange, orch.HandleExchange); err != nil {
			slog.Error("failed to subscribe to exchange events", "error", err)
			os.Exit(1)
		}
	}

	// Background diagnostics cycle
	go orch.RunDiagnosticsLoop(ctx)

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, orch, mem)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if busClient != nil {
		if err := busClient.Publish(bus.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("reflet ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("reflet stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
