package irc

// Alert identifies a session-level event raised by the connection engine.
// Values follow RFC 1459 reply codes where one exists (001, 353, 431, 464);
// the rest live in the unused 4xx/negative space.
type Alert int

const (
	AlertRateLimitWarning      Alert = -1
	AlertConnectedToServer     Alert = 1
	AlertPongReceived          Alert = 7
	AlertJoinedChannel         Alert = 353
	AlertMissingLogin          Alert = 431
	AlertBadLogin              Alert = 464
	AlertConnectionInterrupted Alert = 498
	AlertNoConnection          Alert = 499
)

// Description returns a human-readable description of the alert.
func (a Alert) Description() string {
	switch a {
	case AlertRateLimitWarning:
		return "too many messages queued; pending messages are delayed until the rate-limit window clears"
	case AlertConnectedToServer:
		return "connected to server"
	case AlertPongReceived:
		return "server responded with PONG"
	case AlertJoinedChannel:
		return "joined channel"
	case AlertMissingLogin:
		return "missing login information (username, token or channel)"
	case AlertBadLogin:
		return "login authentication failed"
	case AlertConnectionInterrupted:
		return "connection was unexpectedly ended"
	case AlertNoConnection:
		return "could not reach server"
	default:
		return "unknown alert"
	}
}

// IsError reports whether the alert describes a fault rather than a status
// update. Rate-limit warnings are advisory and not errors.
func (a Alert) IsError() bool {
	switch a {
	case AlertMissingLogin, AlertBadLogin, AlertConnectionInterrupted, AlertNoConnection:
		return true
	default:
		return false
	}
}

func (a Alert) String() string { return a.Description() }
