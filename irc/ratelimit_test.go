package irc

import (
	"testing"
	"time"
)

func TestSendLedgerSlidingWindow(t *testing.T) {
	var l sendLedger
	base := time.Now()

	for i := 0; i < ChatRegular.Count; i++ {
		if !l.admit(base, ChatRegular) {
			t.Fatalf("send %d rejected inside empty window", i)
		}
		l.record(base.Add(time.Duration(i) * time.Second))
	}
	if l.admit(base.Add(19*time.Second), ChatRegular) {
		t.Errorf("send admitted with a full window")
	}

	// 31s after the first send the oldest timestamp has aged out; the
	// window slides, it does not reset.
	if !l.admit(base.Add(31*time.Second), ChatRegular) {
		t.Errorf("send rejected after oldest timestamp aged out")
	}
	if got := l.size(); got != ChatRegular.Count-1 {
		t.Errorf("size() = %d after prune, want %d", got, ChatRegular.Count-1)
	}
}

func TestSendLedgerModeratorTier(t *testing.T) {
	var l sendLedger
	base := time.Now()
	for i := 0; i < ChatModerator.Count; i++ {
		l.record(base)
	}
	if l.admit(base, ChatModerator) {
		t.Errorf("send admitted at moderator budget")
	}
	if !l.admit(base.Add(ChatModerator.Window+time.Millisecond), ChatModerator) {
		t.Errorf("send rejected after full window elapsed")
	}
}

func TestSendLedgerTierDowngradeKeepsStamps(t *testing.T) {
	// Recorded under the moderator tier, then judged under the regular
	// tier: the old timestamps keep counting until they age out.
	var l sendLedger
	base := time.Now()
	for i := 0; i < 50; i++ {
		l.record(base)
	}
	if l.admit(base, ChatRegular) {
		t.Errorf("regular-tier send admitted over 50 recent sends")
	}
	if !l.admit(base, ChatModerator) {
		t.Errorf("moderator-tier send rejected under budget")
	}
}

func TestRateLimitTiers(t *testing.T) {
	tests := []struct {
		name   string
		limit  RateLimit
		count  int
		window time.Duration
	}{
		{"chat regular", ChatRegular, 20, 30 * time.Second},
		{"chat moderator", ChatModerator, 100, 30 * time.Second},
		{"site verified", SiteLimitVerified, 7500, 30 * time.Second},
		{"auth regular", AuthAttemptsRegular, 20, 10 * time.Second},
		{"join regular", JoinAttemptsRegular, 20, 10 * time.Second},
		{"auth verified", AuthAttemptsVerified, 200, 10 * time.Second},
		{"join verified", JoinAttemptsVerified, 2000, 10 * time.Second},
	}
	for _, tt := range tests {
		if tt.limit.Count != tt.count || tt.limit.Window != tt.window {
			t.Errorf("%s = {%d %v}, want {%d %v}", tt.name, tt.limit.Count, tt.limit.Window, tt.count, tt.window)
		}
	}
}

func TestRateLimitLimiter(t *testing.T) {
	lim := AuthAttemptsRegular.limiter()
	if lim.Burst() != AuthAttemptsRegular.Count {
		t.Errorf("Burst() = %d, want %d", lim.Burst(), AuthAttemptsRegular.Count)
	}
	// A freshly built limiter admits a full burst without delay.
	for i := 0; i < AuthAttemptsRegular.Count; i++ {
		if !lim.Allow() {
			t.Fatalf("attempt %d rejected inside burst", i)
		}
	}
}
