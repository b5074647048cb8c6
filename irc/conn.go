package irc

import (
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onnwee/twitchchat/telemetry"
)

const (
	pingCommand  = "PING :tmi.twitch.tv"
	pongCommand  = "PONG :tmi.twitch.tv"
	writeTimeout = 10 * time.Second
)

// conn owns one TCP socket and the dedicated read/write goroutines around
// it. The socket is touched only by those two goroutines; every other
// component communicates through the queues. A conn is used for exactly one
// connection attempt and discarded on disconnect.
type conn struct {
	sock  net.Conn
	creds Credentials
	opts  Options

	// Inbound queues are owned by the session and shared across
	// successive connections; outbound queues are per-connection so a
	// fresh connect never replays stale chat.
	chatQueue     *fifo[*Chatter]
	alertQueue    *fifo[Alert]
	priorityQueue *fifo[string]
	writeQueue    *fifo[string]

	// chatLimit is swapped by the reader on USERSTATE and read by the
	// writer each cycle. The ledger itself is confined to the writer;
	// ledgerLen mirrors its size for the enqueue-side warning check.
	rateMu    sync.Mutex
	chatLimit RateLimit
	ledger    sendLedger
	ledgerLen atomic.Int64

	clientTags       atomic.Pointer[Tags]
	userstateChannel atomic.Pointer[string]

	running     atomic.Bool
	interrupted atomic.Bool
	endOnce     sync.Once
	closeOnce   sync.Once
	wg          sync.WaitGroup
	workers     atomic.Int32

	parseFailures atomic.Uint64
}

// newConn wraps an established socket. Call begin to start the worker
// goroutines.
func newConn(sock net.Conn, creds Credentials, opts Options, chatQueue *fifo[*Chatter], alertQueue *fifo[Alert]) *conn {
	c := &conn{
		sock:          sock,
		creds:         creds,
		opts:          opts,
		chatQueue:     chatQueue,
		alertQueue:    alertQueue,
		priorityQueue: newFIFO[string](),
		writeQueue:    newFIFO[string](),
		chatLimit:     ChatRegular,
	}
	c.clientTags.Store(&Tags{})
	c.running.Store(true)
	return c
}

// begin queues the login handshake and starts the read and write loops. The
// handshake is prepended so it is written before anything else, including
// priority commands queued before the workers started, and without rate
// limiting.
func (c *conn) begin() {
	c.priorityQueue.prepend(
		"PASS oauth:"+c.creds.OAuthToken,
		"NICK "+c.creds.Username,
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
	)

	c.wg.Add(2)
	c.workers.Store(2)
	go c.readLoop()
	go c.writeLoop()
}

// end flips the running flag and closes the socket once both loops have
// observed it. Non-blocking and idempotent.
func (c *conn) end() {
	c.endOnce.Do(func() {
		c.running.Store(false)
		go func() {
			c.wg.Wait()
			c.close()
		}()
	})
}

// blockingEnd is the synchronous variant of end: it joins both worker
// goroutines before closing the socket. Safe to call after end.
func (c *conn) blockingEnd() {
	c.endOnce.Do(func() { c.running.Store(false) })
	c.wg.Wait()
	c.close()
}

func (c *conn) close() {
	c.closeOnce.Do(func() {
		if err := c.sock.Close(); err != nil {
			slog.Debug("socket close", slog.Any("err", err))
		}
	})
}

// alive reports whether any worker goroutine is still running.
func (c *conn) alive() bool { return c.workers.Load() > 0 }

// readLoop receives bytes from the socket, assembles them into protocol
// lines, and dispatches parsed events into the inbound queues. Reads are
// bounded by a deadline of one read interval so the loop observes the
// running flag promptly; a read error other than a deadline timeout means
// the connection is dead (an immediate EOF is the half-closed socket case).
func (c *conn) readLoop() {
	defer func() {
		c.workers.Add(-1)
		c.wg.Done()
		slog.Debug("read loop stopped", slog.String("component", "irc_conn"))
	}()

	buf := make([]byte, c.opts.ReadBufferSize)
	line := make([]byte, 0, 512)

	for c.running.Load() {
		_ = c.sock.SetReadDeadline(time.Now().Add(c.opts.ReadInterval))
		n, err := c.sock.Read(buf)
		for _, b := range buf[:n] {
			// A line ends at '\n' or '\r'. Multi-byte UTF-8
			// sequences never contain either byte, so splitting at
			// byte granularity is a correct incremental decode
			// even when a character straddles two reads.
			if b == '\n' || b == '\r' {
				if len(line) > 0 {
					c.handleLine(string(line))
					line = line[:0]
				}
				continue
			}
			line = append(line, b)
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if c.running.Load() {
				slog.Warn("socket read failed", slog.Any("err", err), slog.String("component", "irc_conn"))
			}
			c.interrupt()
			return
		}
	}
}

// writeLoop drains the outbound queues each cycle: the entire priority
// queue unconditionally, then normal commands for as long as the rate
// limiter admits another send. Sleeps one write interval between cycles.
func (c *conn) writeLoop() {
	defer func() {
		c.workers.Add(-1)
		c.wg.Done()
		slog.Debug("write loop stopped", slog.String("component", "irc_conn"))
	}()

	for c.running.Load() {
		for {
			cmd, ok := c.priorityQueue.pop()
			if !ok {
				break
			}
			if err := c.writeLine(cmd); err != nil {
				c.interrupt()
				return
			}
		}

		limit := c.currentLimit()
		now := time.Now()
		c.ledger.prune(now, limit.Window)
		for c.ledger.size() < limit.Count {
			cmd, ok := c.writeQueue.pop()
			if !ok {
				break
			}
			if err := c.writeLine(cmd); err != nil {
				c.ledgerLen.Store(int64(c.ledger.size()))
				c.interrupt()
				return
			}
			c.ledger.record(time.Now())
			telemetry.IncSend()
		}
		c.ledgerLen.Store(int64(c.ledger.size()))
		telemetry.SetOutboundQueueDepth(c.priorityQueue.size() + c.writeQueue.size())

		time.Sleep(c.opts.WriteInterval)
	}
}

// writeLine sends one CRLF-terminated protocol line.
func (c *conn) writeLine(s string) error {
	_ = c.sock.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.sock.Write(append([]byte(s), '\r', '\n')); err != nil {
		if c.running.Load() {
			slog.Warn("socket write failed", slog.Any("err", err), slog.String("component", "irc_conn"))
		}
		return err
	}
	slog.Debug("irc write", slog.String("raw", s))
	return nil
}

// interrupt reports an unexpected connection end exactly once and stops
// both loops. A no-op once a disconnect has been requested.
func (c *conn) interrupt() {
	if !c.running.Load() {
		return
	}
	if c.interrupted.CompareAndSwap(false, true) {
		c.alertQueue.push(AlertConnectionInterrupted)
		c.running.Store(false)
	}
}

// handleLine parses one completed line and dispatches the event. PING is
// answered unconditionally, before any session state is considered: it is a
// liveness response, not a protocol milestone.
func (c *conn) handleLine(raw string) {
	telemetry.IncLineReceived()
	slog.Debug("irc read", slog.String("raw", raw))

	ev, err := parseLine(raw)
	if ev.ping {
		c.sendCommand(pongCommand, true)
	}
	if ev.pong {
		c.alertQueue.push(AlertPongReceived)
	}
	if err != nil {
		c.parseFailures.Add(1)
		telemetry.IncParseFailure()
		slog.Debug("dropping malformed line", slog.String("raw", raw), slog.Any("err", err))
		return
	}

	switch ev.kind {
	case linePrivMsg:
		if ev.chatter.Tags.ColorHex == "" {
			if c.opts.UseRandomColor {
				ev.chatter.Tags.ColorHex = fallbackNameColor(ev.chatter.Login)
			} else {
				ev.chatter.Tags.ColorHex = "#FFFFFF"
			}
		}
		c.chatQueue.push(ev.chatter)
		telemetry.IncChatMessage()
	case lineUserState:
		c.clientTags.Store(ev.tags)
		c.userstateChannel.Store(&ev.channel)
		c.updateRateLimit()
	case lineNotice:
		if strings.Contains(ev.text, ":Login authentication failed") {
			c.alertQueue.push(AlertBadLogin)
		}
	case lineReply:
		switch ev.code {
		case "001":
			c.alertQueue.push(AlertConnectedToServer)
		case "353":
			c.alertQueue.push(AlertJoinedChannel)
		}
	}
}

// updateRateLimit re-evaluates the chat rate-limit tier from the client's
// most recent USERSTATE badges. Switching tiers never rewrites the ledger:
// a downgrade keeps counting timestamps recorded under the wider tier until
// they age out.
func (c *conn) updateRateLimit() {
	tags := c.clientTags.Load()
	limit := ChatRegular
	if tags.HasBadge("broadcaster") || tags.HasBadge("moderator") {
		limit = ChatModerator
	}
	c.rateMu.Lock()
	changed := c.chatLimit != limit
	c.chatLimit = limit
	c.rateMu.Unlock()
	if changed {
		slog.Info("chat rate-limit tier changed",
			slog.Int("count", limit.Count),
			slog.Duration("window", limit.Window))
	}
}

func (c *conn) currentLimit() RateLimit {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	return c.chatLimit
}

// sendCommand queues a command for the writer. Priority commands bypass
// rate limiting and are drained before any normal command. Queuing a normal
// command that brings the recent-send plus pending total to or above the
// active window budget raises an advisory rate-limit warning; the command is
// still queued, never dropped.
func (c *conn) sendCommand(command string, priority bool) {
	if priority {
		c.priorityQueue.push(command)
		return
	}
	limit := c.currentLimit()
	if c.ledgerLen.Load()+int64(c.writeQueue.size())+1 >= int64(limit.Count) {
		c.alertQueue.push(AlertRateLimitWarning)
		telemetry.IncRateLimitWarning()
	}
	c.writeQueue.push(command)
}

// sendChatMessage queues a PRIVMSG to the joined channel.
func (c *conn) sendChatMessage(message string) {
	c.sendCommand("PRIVMSG #"+c.creds.Channel+" :"+message, false)
}

func (c *conn) ping() {
	c.sendCommand(pingCommand, true)
}
