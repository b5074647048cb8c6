package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TWITCH_IRC_ADDR", "IRC_READ_INTERVAL", "IRC_WRITE_INTERVAL",
		"IRC_PUMP_INTERVAL", "IRC_DIAL_TIMEOUT", "IRC_READ_BUFFER_SIZE",
		"IRC_RANDOM_NAME_COLOR", "HTTP_ADDR", "TWITCH_ANONYMOUS",
	} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IRCAddr != "irc.chat.twitch.tv:6667" {
		t.Errorf("IRCAddr = %q, want default endpoint", cfg.IRCAddr)
	}
	if cfg.ReadInterval != 50*time.Millisecond {
		t.Errorf("ReadInterval = %v, want 50ms", cfg.ReadInterval)
	}
	if cfg.WriteInterval != 50*time.Millisecond {
		t.Errorf("WriteInterval = %v, want 50ms", cfg.WriteInterval)
	}
	if cfg.PumpInterval != 50*time.Millisecond {
		t.Errorf("PumpInterval = %v, want 50ms", cfg.PumpInterval)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Errorf("DialTimeout = %v, want 10s", cfg.DialTimeout)
	}
	if cfg.ReadBufferSize != 256 {
		t.Errorf("ReadBufferSize = %d, want 256", cfg.ReadBufferSize)
	}
	if cfg.UseRandomColor {
		t.Errorf("UseRandomColor = true, want false by default")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.AnonymousLogin {
		t.Errorf("AnonymousLogin = true, want false by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TWITCH_IRC_ADDR", "localhost:6667")
	t.Setenv("IRC_READ_INTERVAL", "25ms")
	t.Setenv("IRC_READ_BUFFER_SIZE", "1024")
	t.Setenv("IRC_RANDOM_NAME_COLOR", "1")
	t.Setenv("TWITCH_ANONYMOUS", "1")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IRCAddr != "localhost:6667" {
		t.Errorf("IRCAddr = %q, want %q", cfg.IRCAddr, "localhost:6667")
	}
	if cfg.ReadInterval != 25*time.Millisecond {
		t.Errorf("ReadInterval = %v, want 25ms", cfg.ReadInterval)
	}
	if cfg.ReadBufferSize != 1024 {
		t.Errorf("ReadBufferSize = %d, want 1024", cfg.ReadBufferSize)
	}
	if !cfg.UseRandomColor {
		t.Errorf("UseRandomColor = false, want true")
	}
	if !cfg.AnonymousLogin {
		t.Errorf("AnonymousLogin = false, want true")
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("IRC_READ_INTERVAL", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for invalid IRC_READ_INTERVAL")
	}
	t.Setenv("IRC_READ_INTERVAL", "-5ms")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for negative IRC_READ_INTERVAL")
	}
	t.Setenv("IRC_READ_INTERVAL", "")
	t.Setenv("IRC_READ_BUFFER_SIZE", "zero")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for non-numeric IRC_READ_BUFFER_SIZE")
	}
}

func TestValidateChatReady(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "chan")
	t.Setenv("TWITCH_BOT_USERNAME", "bot")
	t.Setenv("TWITCH_OAUTH_TOKEN", "oauth:token")
	t.Setenv("TWITCH_ANONYMOUS", "")
	cfg, _ := Load()
	if err := cfg.ValidateChatReady(); err != nil {
		t.Errorf("expected valid chat config, got %v", err)
	}

	t.Setenv("TWITCH_CHANNEL", "")
	cfg, _ = Load()
	if err := cfg.ValidateChatReady(); err == nil {
		t.Errorf("expected error when missing TWITCH_CHANNEL")
	}

	t.Setenv("TWITCH_CHANNEL", "chan")
	t.Setenv("TWITCH_OAUTH_TOKEN", "")
	cfg, _ = Load()
	if err := cfg.ValidateChatReady(); err == nil {
		t.Errorf("expected error when missing TWITCH_OAUTH_TOKEN")
	}
}

func TestValidateChatReadyAnonymous(t *testing.T) {
	t.Setenv("TWITCH_CHANNEL", "chan")
	t.Setenv("TWITCH_BOT_USERNAME", "")
	t.Setenv("TWITCH_OAUTH_TOKEN", "")
	t.Setenv("TWITCH_ANONYMOUS", "1")
	cfg, _ := Load()
	if err := cfg.ValidateChatReady(); err != nil {
		t.Errorf("expected anonymous config to validate, got %v", err)
	}
}
