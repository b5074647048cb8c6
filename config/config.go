// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (Twitch chat login), use ValidateChatReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Twitch login
	TwitchChannel     string
	TwitchBotUsername string
	TwitchOAuthToken  string
	AnonymousLogin    bool

	// IRC engine
	IRCAddr        string
	ReadInterval   time.Duration
	WriteInterval  time.Duration
	PumpInterval   time.Duration
	ReadBufferSize int
	DialTimeout    time.Duration
	UseRandomColor bool

	// HTTP observability server
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch creds are missing;
// use ValidateChatReady() when you require an authenticated session. With TWITCH_ANONYMOUS=1 the
// engine connects read-only under a generated login.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	cfg.AnonymousLogin = os.Getenv("TWITCH_ANONYMOUS") == "1"

	cfg.IRCAddr = os.Getenv("TWITCH_IRC_ADDR")
	if cfg.IRCAddr == "" {
		cfg.IRCAddr = "irc.chat.twitch.tv:6667"
	}

	var err error
	if cfg.ReadInterval, err = durationEnv("IRC_READ_INTERVAL", 50*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WriteInterval, err = durationEnv("IRC_WRITE_INTERVAL", 50*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.PumpInterval, err = durationEnv("IRC_PUMP_INTERVAL", 50*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.DialTimeout, err = durationEnv("IRC_DIAL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.ReadBufferSize = 256
	if v := os.Getenv("IRC_READ_BUFFER_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid IRC_READ_BUFFER_SIZE: %q", v)
		}
		cfg.ReadBufferSize = n
	}

	cfg.UseRandomColor = os.Getenv("IRC_RANDOM_NAME_COLOR") == "1"

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// ValidateChatReady checks required fields for an authenticated chat session.
// Anonymous sessions only require a channel.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL")
	}
	if c.AnonymousLogin {
		return nil
	}
	if c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN (or TWITCH_ANONYMOUS=1)")
	}
	return nil
}

// durationEnv parses a duration env var, falling back to def when unset.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s (duration): %q", key, v)
	}
	return d, nil
}
