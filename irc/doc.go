// Package irc implements a persistent client for the Twitch IRC chat
// protocol (plain TCP, default port 6667).
//
// The engine is split into four parts:
//   - a pure line parser that turns tag-augmented protocol lines into typed
//     events (chat messages, userstate updates, notices, numeric replies),
//   - a sliding-window rate limiter with permission-dependent tiers,
//   - a connection that owns the socket and runs dedicated read/write
//     goroutines around thread-safe inbound and outbound queues,
//   - a session controller that sequences connect, authenticate, join and
//     steady-state, and drives reconnect-with-backoff on interruption.
//
// The host constructs one Session, registers callbacks for chat events and
// connection alerts, and runs the session pump:
//
//	session := irc.NewSession(irc.Credentials{
//		Username:   "mybot",
//		OAuthToken: "oauth:abc123",
//		Channel:    "somechannel",
//	}, irc.Options{})
//	session.OnChatMessage(func(c *irc.Chatter) { ... })
//	session.OnConnectionAlert(func(a irc.Alert) { ... })
//	go session.Run(ctx)
//	session.Connect()
//
// All callbacks are invoked from the pump goroutine, never from the socket
// workers. SendChatMessage and SendCommand are safe to call from any
// goroutine; outbound chat is paced by the active rate-limit tier while
// session-critical commands (auth, JOIN, PONG) bypass rate limiting
// entirely.
package irc
