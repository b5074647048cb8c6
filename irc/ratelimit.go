package irc

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimit is a (count, window) budget for outbound commands. The tier
// values below mirror the limits Twitch documents for chat, authentication
// and channel joins.
type RateLimit struct {
	Count  int
	Window time.Duration
}

var (
	// ChatRegular applies to chat sends for users without moderator
	// permissions in the channel.
	ChatRegular = RateLimit{Count: 20, Window: 30 * time.Second}

	// ChatModerator applies to chat sends when the client is the
	// broadcaster or has moderator permissions.
	ChatModerator = RateLimit{Count: 100, Window: 30 * time.Second}

	// SiteLimitVerified is the site-wide send limit for verified bots.
	// Channel-level limits still apply on top of it.
	SiteLimitVerified = RateLimit{Count: 7500, Window: 30 * time.Second}

	// AuthAttemptsRegular limits authentication attempts for a regular
	// account.
	AuthAttemptsRegular = RateLimit{Count: 20, Window: 10 * time.Second}

	// JoinAttemptsRegular limits channel join attempts for a regular
	// account.
	JoinAttemptsRegular = RateLimit{Count: 20, Window: 10 * time.Second}

	// AuthAttemptsVerified limits authentication attempts for a verified
	// bot.
	AuthAttemptsVerified = RateLimit{Count: 200, Window: 10 * time.Second}

	// JoinAttemptsVerified limits channel join attempts for a verified bot.
	JoinAttemptsVerified = RateLimit{Count: 2000, Window: 10 * time.Second}
)

// limiter returns a token-bucket limiter matching this budget, used for the
// fixed auth/join attempt tiers which never switch dynamically.
func (l RateLimit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(l.Window/time.Duration(l.Count)), l.Count)
}

// sendLedger is a FIFO of recent send timestamps checked against the active
// rate-limit window. It is confined to the writer goroutine; concurrent
// readers observe its size through the connection's atomic mirror.
type sendLedger struct {
	stamps []time.Time
}

// prune discards timestamps older than now minus the window.
func (l *sendLedger) prune(now time.Time, window time.Duration) {
	minTime := now.Add(-window)
	i := 0
	for i < len(l.stamps) && l.stamps[i].Before(minTime) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// admit prunes the ledger and reports whether another send fits inside the
// window. Switching tiers only changes the threshold: timestamps recorded
// under a previous tier keep counting until they age out.
func (l *sendLedger) admit(now time.Time, limit RateLimit) bool {
	l.prune(now, limit.Window)
	return len(l.stamps) < limit.Count
}

// record appends a send timestamp.
func (l *sendLedger) record(now time.Time) {
	l.stamps = append(l.stamps, now)
}

func (l *sendLedger) size() int { return len(l.stamps) }
