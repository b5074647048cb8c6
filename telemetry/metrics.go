// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	LinesReceived     prometheus.Counter
	ParseFailures     prometheus.Counter
	ChatMessages      prometheus.Counter
	Sends             prometheus.Counter
	Reconnects        prometheus.Counter
	RateLimitWarnings prometheus.Counter

	// Histograms (seconds)
	ConnectDuration prometheus.Observer

	// Gauges
	ConnectionStateGauge prometheus.Gauge // numeric SessionState value
	OutboundQueueDepth   prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		LinesReceived = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_lines_received_total", Help: "Number of protocol lines received from the server"})
		ParseFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_parse_failures_total", Help: "Number of malformed protocol lines dropped"})
		ChatMessages = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_chat_messages_total", Help: "Number of chat messages parsed"})
		Sends = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_sends_total", Help: "Number of rate-limited commands written to the socket"})
		Reconnects = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_reconnects_total", Help: "Number of reconnect attempts after a connection interruption"})
		RateLimitWarnings = promauto.NewCounter(prometheus.CounterOpts{Name: "irc_rate_limit_warnings_total", Help: "Number of advisory rate-limit warnings raised on enqueue"})
		ConnectDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "irc_connect_duration_seconds", Help: "TCP connect duration seconds", Buckets: prometheus.DefBuckets})
		ConnectionStateGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "irc_connection_state", Help: "Session state (0=disconnected 1=connecting 2=authenticating 3=join_pending 4=connected 5=disconnecting)"})
		OutboundQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{Name: "irc_outbound_queue_depth", Help: "Pending outbound commands across both write queues"})
	})
}

// IncLineReceived counts one received protocol line.
func IncLineReceived() {
	if LinesReceived != nil {
		LinesReceived.Inc()
	}
}

// IncParseFailure counts one dropped malformed line.
func IncParseFailure() {
	if ParseFailures != nil {
		ParseFailures.Inc()
	}
}

// IncChatMessage counts one parsed chat message.
func IncChatMessage() {
	if ChatMessages != nil {
		ChatMessages.Inc()
	}
}

// IncSend counts one rate-limited send.
func IncSend() {
	if Sends != nil {
		Sends.Inc()
	}
}

// IncReconnect counts one scheduled reconnect attempt.
func IncReconnect() {
	if Reconnects != nil {
		Reconnects.Inc()
	}
}

// IncRateLimitWarning counts one advisory rate-limit warning.
func IncRateLimitWarning() {
	if RateLimitWarnings != nil {
		RateLimitWarnings.Inc()
	}
}

// SetConnectionState records the current numeric session state.
func SetConnectionState(state int) {
	if ConnectionStateGauge != nil {
		ConnectionStateGauge.Set(float64(state))
	}
}

// SetOutboundQueueDepth records the pending outbound command count.
func SetOutboundQueueDepth(n int) {
	if OutboundQueueDepth != nil {
		OutboundQueueDepth.Set(float64(n))
	}
}

// ObserveConnectDuration records one TCP connect duration.
func ObserveConnectDuration(d time.Duration) {
	if ConnectDuration != nil {
		ConnectDuration.Observe(d.Seconds())
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
