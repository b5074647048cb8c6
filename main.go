// Command twitchchat is a reference host around the IRC engine. It:
//   - Loads configuration and initializes structured logging.
//   - Connects a chat session to the configured channel and logs every chat
//     message and connection alert it pumps out.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, and
//     /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/onnwee/twitchchat/config"
	"github.com/onnwee/twitchchat/irc"
	"github.com/onnwee/twitchchat/server"
	"github.com/onnwee/twitchchat/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Error("chat config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("twitchchat", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := irc.NewSession(irc.Credentials{
		Username:   cfg.TwitchBotUsername,
		OAuthToken: cfg.TwitchOAuthToken,
		Channel:    cfg.TwitchChannel,
		Anonymous:  cfg.AnonymousLogin,
	}, irc.Options{
		Addr:           cfg.IRCAddr,
		ReadInterval:   cfg.ReadInterval,
		WriteInterval:  cfg.WriteInterval,
		PumpInterval:   cfg.PumpInterval,
		ReadBufferSize: cfg.ReadBufferSize,
		DialTimeout:    cfg.DialTimeout,
		UseRandomColor: cfg.UseRandomColor,
	})

	session.OnChatMessage(func(c *irc.Chatter) {
		name := c.Tags.DisplayName
		if name == "" || !c.IsDisplayNameFontSafe() {
			name = c.Login
		}
		slog.Info("chat",
			slog.String("channel", c.Channel),
			slog.String("from", name),
			slog.String("message", c.Message),
			slog.String("color", c.Tags.ColorHex))
	})
	session.OnConnectionAlert(func(a irc.Alert) {
		if a.IsError() {
			slog.Warn("alert", slog.String("description", a.Description()))
		} else {
			slog.Info("alert", slog.String("description", a.Description()))
		}
	})

	go session.Run(ctx)
	session.Connect()

	// HTTP server (health/status/metrics)
	go func() {
		if err := server.Start(ctx, session, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
	session.BlockingDisconnect()
}
