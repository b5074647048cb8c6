package irc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/onnwee/twitchchat/telemetry"
)

// SessionState is the lifecycle state of a Session. Owned exclusively by
// the session pump; worker goroutines only report liveness.
type SessionState int32

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateAuthenticating
	StateJoinPending
	StateConnected
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateJoinPending:
		return "join_pending"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Options tune the connection engine. The zero value selects defaults
// matching the public Twitch IRC endpoint.
type Options struct {
	// Addr is the server address, host:port.
	Addr string

	// ReadInterval bounds how long the reader blocks per cycle; the
	// cancellation flag is observed at least this often.
	ReadInterval time.Duration

	// WriteInterval is the sleep between writer cycles.
	WriteInterval time.Duration

	// PumpInterval is the cadence at which the session drains the
	// inbound queues into host callbacks.
	PumpInterval time.Duration

	// ReadBufferSize is the socket read buffer capacity in bytes.
	ReadBufferSize int

	// DialTimeout bounds one TCP connect attempt.
	DialTimeout time.Duration

	// UseRandomColor assigns chatters without a configured name color a
	// deterministic color from the native Twitch palette instead of
	// white.
	UseRandomColor bool
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = "irc.chat.twitch.tv:6667"
	}
	if o.ReadInterval <= 0 {
		o.ReadInterval = 50 * time.Millisecond
	}
	if o.WriteInterval <= 0 {
		o.WriteInterval = 50 * time.Millisecond
	}
	if o.PumpInterval <= 0 {
		o.PumpInterval = 50 * time.Millisecond
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = 256
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	return o
}

// maxEventsPerPump caps how many queued events one pump tick handles so a
// burst after a stall cannot monopolize the pump.
const maxEventsPerPump = 100

// maxReconnectDelay bounds the exponential reconnect backoff.
const maxReconnectDelay = 64 * time.Second

var (
	// ErrNotConnected is returned when sending without an active
	// connection.
	ErrNotConnected = errors.New("irc: not connected")

	// ErrAnonymous is returned when sending chat from an anonymous
	// session.
	ErrAnonymous = errors.New("irc: anonymous sessions cannot send chat messages")

	// ErrEmptyMessage is returned for empty outbound chat messages.
	ErrEmptyMessage = errors.New("irc: chat message is empty")
)

// Session is the host-facing boundary of the engine: the state machine that
// sequences connect, authenticate, join and steady-state, reconnects with
// backoff on interruption, and pumps inbound queues into host callbacks.
// Construct one with NewSession, start Run in a goroutine, then call
// Connect.
type Session struct {
	creds Credentials
	opts  Options

	chatQueue  *fifo[*Chatter]
	alertQueue *fifo[Alert]

	state atomic.Int32

	mu             sync.Mutex
	conn           *conn
	active         Credentials // normalized credentials of the current attempt
	failCount      int
	connectPending bool
	reconnectAt    time.Time
	reconnectArmed bool

	onChat  []func(*Chatter)
	onAlert []func(Alert)

	authLimiter *rate.Limiter
	joinLimiter *rate.Limiter

	// dial is a seam for tests; defaults to a net.Dialer.
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// NewSession creates a session for the given credentials. Callbacks must be
// registered before Run is started.
func NewSession(creds Credentials, opts Options) *Session {
	return &Session{
		creds:       creds,
		opts:        opts.withDefaults(),
		chatQueue:   newFIFO[*Chatter](),
		alertQueue:  newFIFO[Alert](),
		authLimiter: AuthAttemptsRegular.limiter(),
		joinLimiter: JoinAttemptsRegular.limiter(),
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

// OnChatMessage registers a callback for parsed chat messages. Invoked from
// the pump goroutine in socket receive order.
func (s *Session) OnChatMessage(fn func(*Chatter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChat = append(s.onChat, fn)
}

// OnConnectionAlert registers a callback for connection alerts. Invoked
// from the pump goroutine after the session has acted on the alert.
func (s *Session) OnConnectionAlert(fn func(Alert)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAlert = append(s.onAlert, fn)
}

// Run drains the inbound queues and drives reconnects until ctx is
// cancelled, then disconnects. Blocking; run it in its own goroutine.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PumpInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.BlockingDisconnect()
			return
		case <-ticker.C:
			s.pump()
		}
	}
}

// Connect validates credentials and opens a connection attempt. Missing
// credentials surface as a missing-login alert without touching the
// network. Non-blocking: progress is reported through alerts.
func (s *Session) Connect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connectPending {
		return
	}

	creds := s.creds.normalized()
	if err := creds.validate(); err != nil {
		slog.Error("cannot connect", slog.Any("err", err), slog.String("component", "irc_session"))
		s.alertQueue.push(AlertMissingLogin)
		return
	}

	if s.conn != nil {
		s.conn.end()
		s.conn = nil
	}

	s.active = creds
	s.connectPending = true
	s.reconnectArmed = false
	s.setState(StateConnecting)
	go s.dialAndBegin(creds)
}

// dialAndBegin performs the blocking part of a connection attempt off the
// pump goroutine: auth-attempt throttling, the TCP dial, and worker
// startup.
func (s *Session) dialAndBegin(creds Credentials) {
	ctx, span := telemetry.StartSpan(context.Background(), "irc-session", "connect")
	defer span.End()

	// Authentication attempts have their own fixed rate-limit tier.
	if res := s.authLimiter.Reserve(); res.OK() && res.Delay() > 0 {
		slog.Warn("auth attempt throttled", slog.Duration("delay", res.Delay()))
		time.Sleep(res.Delay())
	}

	start := time.Now()
	dialCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	defer cancel()
	sock, err := s.dial(dialCtx, s.opts.Addr)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A Disconnect issued while the dial was in flight clears the pending
	// flag; the attempt no longer owns the session.
	if !s.connectPending {
		if err == nil {
			_ = sock.Close()
		}
		return
	}
	s.connectPending = false

	if err != nil {
		telemetry.RecordError(span, err)
		slog.Error("failed to reach server", slog.String("addr", s.opts.Addr), slog.Any("err", err))
		s.alertQueue.push(AlertNoConnection)
		s.setState(StateDisconnected)
		return
	}

	telemetry.ObserveConnectDuration(time.Since(start))
	slog.Info("socket opened", slog.String("addr", s.opts.Addr), slog.String("username", creds.Username))

	c := newConn(sock, creds, s.opts, s.chatQueue, s.alertQueue)
	s.conn = c
	c.begin()
	s.setState(StateAuthenticating)
}

// Disconnect stops the engine without waiting for the workers to exit.
// Idempotent; an explicit disconnect resets the failure counter and cancels
// any pending reconnect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked(false)
}

// BlockingDisconnect stops the engine and joins the worker goroutines
// before returning.
func (s *Session) BlockingDisconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked(true)
}

func (s *Session) disconnectLocked(blocking bool) {
	s.failCount = 0
	s.reconnectArmed = false
	// Also abandons any dial still in flight: dialAndBegin discards its
	// socket when it finds the pending flag cleared.
	s.connectPending = false
	if s.conn == nil {
		s.setState(StateDisconnected)
		return
	}
	s.setState(StateDisconnecting)
	if blocking {
		s.conn.blockingEnd()
	} else {
		s.conn.end()
	}
	s.conn = nil
	s.setState(StateDisconnected)
	slog.Info("disconnected", slog.String("component", "irc_session"))
}

// SendChatMessage queues a chat message to the joined channel. The message
// is paced by the active rate-limit tier and never dropped.
func (s *Session) SendChatMessage(message string) error {
	if message == "" {
		return ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Anonymous {
		return ErrAnonymous
	}
	if s.conn == nil {
		return ErrNotConnected
	}
	s.conn.sendChatMessage(message)
	return nil
}

// SendCommand queues a raw command. Priority commands bypass rate limiting;
// reserve them for session-critical traffic.
func (s *Session) SendCommand(command string, priority bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	s.conn.sendCommand(command, priority)
	return nil
}

// Ping sends a client-initiated keepalive; the server answers with a PONG
// which surfaces as AlertPongReceived.
func (s *Session) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotConnected
	}
	s.conn.ping()
	return nil
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// ClientTags returns the client's own tags from the most recent USERSTATE,
// or an empty Tags before one arrives.
func (s *Session) ClientTags() *Tags {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return &Tags{}
	}
	return s.conn.clientTags.Load()
}

// Channel returns the normalized target channel of the current or most
// recent connection attempt.
func (s *Session) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active.Channel != "" {
		return s.active.Channel
	}
	return s.creds.normalized().Channel
}

// UserstateChannel returns the channel named by the most recent USERSTATE,
// or an empty string before one arrives. Unlike Channel this reflects what
// the server has confirmed, not what was requested.
func (s *Session) UserstateChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ""
	}
	if ch := s.conn.userstateChannel.Load(); ch != nil {
		return *ch
	}
	return ""
}

// IsAnonymous reports whether the session authenticates anonymously.
func (s *Session) IsAnonymous() bool { return s.creds.Anonymous }

// FailCount returns the consecutive connection-failure count.
func (s *Session) FailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failCount
}

// ParseFailures returns the number of malformed lines dropped by the
// current connection.
func (s *Session) ParseFailures() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return 0
	}
	return s.conn.parseFailures.Load()
}

// WorkersAlive reports whether the current connection still has running
// worker goroutines.
func (s *Session) WorkersAlive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.conn.alive()
}

func (s *Session) setState(state SessionState) {
	s.state.Store(int32(state))
	telemetry.SetConnectionState(int(state))
}

// pump is one tick of the session controller: fire a due reconnect, then
// drain alerts and chat events (alerts first, at most maxEventsPerPump in
// total). The pump goroutine is the only place session state transitions.
func (s *Session) pump() {
	s.mu.Lock()
	if s.reconnectArmed && !s.connectPending && time.Now().After(s.reconnectAt) {
		s.reconnectArmed = false
		s.mu.Unlock()
		s.Connect()
	} else {
		s.mu.Unlock()
	}

	handled := 0
	for handled < maxEventsPerPump {
		alert, ok := s.alertQueue.pop()
		if !ok {
			break
		}
		s.handleAlert(alert)
		handled++
	}
	for handled < maxEventsPerPump {
		chatter, ok := s.chatQueue.pop()
		if !ok {
			break
		}
		for _, fn := range s.callbacksChat() {
			fn(chatter)
		}
		handled++
	}
}

// handleAlert applies one alert to the state machine, then forwards it to
// the host callbacks.
func (s *Session) handleAlert(alert Alert) {
	if alert.IsError() {
		slog.Warn("connection alert", slog.String("alert", alert.Description()))
	} else {
		slog.Info("connection alert", slog.String("alert", alert.Description()))
	}

	s.mu.Lock()
	switch alert {
	case AlertConnectedToServer:
		// Registration succeeded; join the target channel. The JOIN
		// goes out on the priority queue, throttled only by the
		// fixed join-attempt tier.
		if s.conn != nil {
			if !s.joinLimiter.Allow() {
				slog.Warn("join attempt budget exceeded")
			}
			s.conn.sendCommand("JOIN #"+s.active.Channel, true)
			s.setState(StateJoinPending)
		}

	case AlertJoinedChannel:
		s.failCount = 0
		s.setState(StateConnected)

	case AlertConnectionInterrupted:
		// Transient transport fault: schedule a reconnect with
		// exponential backoff. The backoff delays only the next
		// attempt; queue draining continues.
		s.failCount++
		telemetry.IncReconnect()
		if s.conn != nil {
			s.conn.end()
			s.conn = nil
		}
		s.setState(StateDisconnected)
		delay := reconnectDelay(s.failCount)
		s.reconnectAt = time.Now().Add(delay)
		s.reconnectArmed = true
		slog.Warn("connection interrupted; reconnecting",
			slog.Int("fail_count", s.failCount),
			slog.Duration("delay", delay))

	case AlertBadLogin, AlertMissingLogin, AlertNoConnection:
		// Configuration or authentication faults are not retried; a
		// new explicit Connect is required.
		s.failCount = 0
		s.reconnectArmed = false
		if s.conn != nil {
			s.conn.end()
			s.conn = nil
		}
		s.setState(StateDisconnected)
	}
	s.mu.Unlock()

	for _, fn := range s.callbacksAlert() {
		fn(alert)
	}
}

// reconnectDelay returns the backoff before reconnect attempt failCount:
// immediate for the first failure, then 1s, 2s, 4s, ... capped at
// maxReconnectDelay.
func reconnectDelay(failCount int) time.Duration {
	if failCount < 2 {
		return 0
	}
	shift := failCount - 2
	if shift > 6 {
		return maxReconnectDelay
	}
	return time.Duration(1<<uint(shift)) * time.Second
}

func (s *Session) callbacksChat() []func(*Chatter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onChat
}

func (s *Session) callbacksAlert() []func(Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onAlert
}
