package nats

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// connState is the state machine in spec.md §4.H.
type connState int32

const (
	stateConnecting connState = iota
	stateHandshaking
	stateConnected
	stateReconnecting
	stateDraining
	stateClosed
)

// Stats are lifetime counters, a standard NATS client affordance
// supplemented into this module per SPEC_FULL.md §4.
type Stats struct {
	InMsgs, OutMsgs   uint64
	InBytes, OutBytes uint64
	Reconnects        uint64
}

// Conn is the protocol handler / state machine (component H): it owns the
// transport, drives handshake, heartbeats, dispatch, and reconnect.
type Conn struct {
	opts Options

	pool     *serverPool
	ids      *idGenerator
	registry *subRegistry
	mux      *requestMux
	status   *statusBus
	writer   *outboundWriter

	mu          sync.Mutex
	state       connState
	generation  uint64
	transport   byteDuplex
	curEntry    *serverEntry
	info        *serverInfo
	headersOK   bool
	subOrder    []string
	stopReader  chan struct{}
	stopHeart   chan struct{}
	pingsOut    int32
	closedCh    chan struct{}
	closedErr   error
	closeOnce   sync.Once
	stats       Stats
}

// Connect dials url (or a comma-separated list of server URLs) and blocks
// through the handshake, returning once CONNECTED or failing with the
// fatal error that prevented it (spec.md §4.H).
func Connect(url string, options ...Option) (*Conn, error) {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	var servers []string
	if strings.TrimSpace(url) != "" {
		for _, u := range strings.Split(url, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				servers = append(servers, u)
			}
		}
	}
	opts.Servers = append(opts.Servers, servers...)

	status := newStatusBus()
	pool, err := newServerPool(opts.Servers, opts.NoRandomize, opts.MaxReconnectAttempts, opts.PerServerReconnectCap, opts.ReconnectWait, status)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		opts:     opts,
		pool:     pool,
		ids:      newIDGenerator(),
		registry: newSubRegistry(),
		status:   status,
		closedCh: make(chan struct{}),
	}
	c.mux = newRequestMux(c)
	c.writer = newOutboundWriter(opts.HighWaterMark, opts.ReplayBuffer, func(n int) {
		c.status.publish(StatusEvent{Kind: StatusError, Err: newErr(ErrSlowConsumer, "dropped %d queued bytes during reconnect", n)})
	})

	entry := pool.next()
	if entry == nil {
		return nil, newErr(ErrConnectionRefused, "no servers configured")
	}
	pool.recordAttempt(entry)
	if err := c.connectOnce(entry); err != nil {
		c.closeWithErr(err)
		return nil, err
	}
	pool.recordSuccess(entry)
	return c, nil
}

func (c *Conn) log() *slog.Logger {
	if c.opts.Logger != nil {
		return c.opts.Logger
	}
	return slog.Default()
}

// connectOnce performs one dial+handshake attempt against entry. On
// success it installs the new transport, bumps the connection generation,
// replays subscription state, and starts the reader/writer/heartbeat
// tasks (spec.md §4.H HANDSHAKING -> CONNECTED transition).
func (c *Conn) connectOnce(entry *serverEntry) error {
	c.setState(stateConnecting)
	d := c.opts.dialer
	if d == nil {
		d = &tcpDialer{tlsConfig: c.opts.TLSConfig}
	}
	transport, err := d.Dial(entry, c.opts.Timeout)
	if err != nil {
		return err
	}
	c.setState(stateHandshaking)

	deadline := time.Now().Add(c.opts.Timeout)
	_ = transport.SetDeadline(deadline)

	info, err := readInfo(transport)
	if err != nil {
		transport.Close()
		return err
	}

	if c.opts.RequireHeaders && !info.Headers {
		transport.Close()
		return newErr(ErrServerOptionNA, "server does not support headers")
	}
	if (info.TLSReq || c.opts.RequestTLS) && c.opts.dialer == nil {
		upgraded, err := upgradeTLS(transport, entry.Host, c.opts.TLSConfig)
		if err != nil {
			transport.Close()
			return err
		}
		transport = upgraded
	}

	var nonce []byte
	if info.Nonce != "" {
		nonce = []byte(info.Nonce)
	}
	var creds Credentials
	if c.opts.Authenticator != nil {
		creds, err = c.opts.Authenticator.Authenticate(nonce)
		if err != nil {
			transport.Close()
			return err
		}
	}

	connectLine := encodeConnect(connectInfo{
		Verbose:     c.opts.Verbose,
		Pedantic:    c.opts.Pedantic,
		TLSRequired: info.TLSReq,
		Name:        c.opts.Name,
		Lang:        "go",
		Version:     "1.0.0",
		Protocol:    1,
		Echo:        !c.opts.NoEcho,
		Headers:     true,
		User:        creds.User,
		Pass:        creds.Pass,
		AuthTok:     creds.AuthToken,
		JWT:         creds.JWT,
		NKey:        creds.NKey,
		Sig:         creds.Sig,
	})
	if _, err := transport.Write(append(connectLine, encodePing()...)); err != nil {
		transport.Close()
		return wrapErr(ErrConnectionRefused, err, "write CONNECT/PING")
	}

	if err := awaitPong(transport); err != nil {
		transport.Close()
		return err
	}
	_ = transport.SetDeadline(time.Time{})

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.transport = transport
	c.curEntry = entry
	c.info = info
	c.headersOK = info.Headers
	c.state = stateConnected
	c.pingsOut = 0
	stopReader := make(chan struct{})
	stopHeart := make(chan struct{})
	c.stopReader = stopReader
	c.stopHeart = stopHeart
	c.stats.Reconnects++
	c.mu.Unlock()

	c.pool.applyDiscovered(info.ConnectURLs)
	if info.LameDuck {
		c.status.publish(StatusEvent{Kind: StatusLameDuck, ServerURL: entry.url()})
	}

	c.mux.resetAfterReconnect()
	c.replaySubscriptions()

	c.writer.attach(transport)
	go c.writer.run(stopWriterChanFor(stopReader))
	go c.readLoop(transport, gen, stopReader)
	go c.heartbeatLoop(gen, stopHeart)

	return nil
}

// stopWriterChanFor reuses the reader's stop channel for the writer task
// too; both are torn down together on disconnect.
func stopWriterChanFor(stop chan struct{}) <-chan struct{} { return stop }

// readInfo blocks until the very first frame — which must be INFO — is
// parsed off transport.
func readInfo(t byteDuplex) (*serverInfo, error) {
	p := newParser()
	buf := make([]byte, 4096)
	var info *serverInfo
	for info == nil {
		n, err := t.Read(buf)
		if err != nil {
			return nil, wrapErr(ErrConnectionTimeout, err, "reading INFO")
		}
		err = p.Feed(buf[:n], func(f Frame) error {
			if f.Kind != FrameInfo {
				return newErr(ErrProtocolError, "expected INFO, got frame kind %d", f.Kind)
			}
			parsed, err := decodeServerInfo(f.Info)
			if err != nil {
				return err
			}
			info = parsed
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}

// awaitPong blocks until a PONG (or any -ERR, returned as its classified
// error) is parsed off transport,
// used only during the handshake before the steady-state reader exists.
func awaitPong(t byteDuplex) error {
	p := newParser()
	buf := make([]byte, 4096)
	for {
		n, err := t.Read(buf)
		if err != nil {
			return wrapErr(ErrConnectionTimeout, err, "awaiting PONG")
		}
		var done bool
		var ferr error
		err = p.Feed(buf[:n], func(f Frame) error {
			switch f.Kind {
			case FramePong:
				done = true
			case FrameErr:
				ferr = classifyErr(f.ErrText)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if ferr != nil {
			return ferr
		}
		if done {
			return nil
		}
	}
}

func (c *Conn) setState(s connState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Conn) getState() connState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// replaySubscriptions re-sends SUB (and UNSUB<sid><max> where applicable)
// for every still-live subscription, in original registration order, as
// required by spec.md's reconnect scenario and testable property.
func (c *Conn) replaySubscriptions() {
	c.mu.Lock()
	order := append([]string(nil), c.subOrder...)
	c.mu.Unlock()
	for _, sid := range order {
		sub, ok := c.registry.get(sid)
		if !ok {
			continue
		}
		c.writer.publish(encodeSub(sub.Subject, sub.Queue, sid))
		sub.mu.Lock()
		max := sub.max
		sub.mu.Unlock()
		if max > 0 {
			c.writer.publish(encodeUnsub(sid, int(max)))
		}
	}
}

// readLoop is the reader task (spec.md §2): parses inbound frames and
// dispatches to the registry, mux (via registry for the mux's own
// subscription), and status bus. gen pins this goroutine to the
// generation it was started for, so a stale transport's error doesn't
// tear down a newer connection.
func (c *Conn) readLoop(t byteDuplex, gen uint64, stop chan struct{}) {
	p := newParser()
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := t.Read(buf)
		if err != nil {
			c.onTransportError(gen, wrapErr(ErrConnectionClosed, err, "read error"))
			return
		}
		if ferr := p.Feed(buf[:n], func(f Frame) error { return c.handleFrame(f) }); ferr != nil {
			c.onTransportError(gen, ferr)
			return
		}
	}
}

func (c *Conn) handleFrame(f Frame) error {
	switch f.Kind {
	case FrameInfo:
		info, err := decodeServerInfo(f.Info)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.info = info
		c.mu.Unlock()
		c.pool.applyDiscovered(info.ConnectURLs)
		if info.LameDuck {
			c.onLameDuck()
		}
	case FramePing:
		c.writer.publish(encodePong())
	case FramePong:
		atomic.StoreInt32(&c.pingsOut, 0)
		c.writer.resolveNextFlush()
	case FrameOK:
		// Verbose-mode acknowledgement; nothing to do.
	case FrameErr:
		return c.handleServerErr(f.ErrText)
	case FrameMsg, FrameHMsg:
		c.handleMsg(f)
	}
	return nil
}

func (c *Conn) handleMsg(f Frame) {
	sub, ok := c.registry.get(f.Sid)
	if !ok {
		// Racing unsubscribe: silently discarded (spec.md §4.F tie-break).
		return
	}
	m := &Msg{Subject: f.Subject, Reply: f.Reply, Data: f.Payload}
	if f.Kind == FrameHMsg {
		dh, err := decodeHeader(f.HeaderRaw)
		if err != nil {
			c.status.publish(StatusEvent{Kind: StatusError, Err: err})
			return
		}
		m.Header = dh.Header
		if dh.StatusCode != 0 {
			if m.Header == nil {
				m.Header = Header{}
			}
			m.Header.Set("Status", strconv.Itoa(dh.StatusCode))
			if dh.StatusDesc != "" {
				m.Header.Set("Status-Description", dh.StatusDesc)
			}
		}
	}
	c.mu.Lock()
	c.stats.InMsgs++
	c.stats.InBytes += uint64(len(f.Payload))
	c.mu.Unlock()

	if removeNow := sub.deliver(m); removeNow {
		c.registry.remove(f.Sid)
	}
}

// handleServerErr classifies a -ERR per spec.md §4.H: fatal kinds close
// the connection, everything else is surfaced on the status bus without
// tearing the connection down.
func (c *Conn) handleServerErr(text string) error {
	if isLameDuckSignal(text) {
		c.onLameDuck()
		return nil
	}
	err := classifyErr(text)
	if isFatal(err.Code) {
		c.closeWithErr(err)
		return err
	}
	c.status.publish(StatusEvent{Kind: StatusError, Err: err})
	return nil
}

func classifyErr(text string) *Error {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "authorization violation") || strings.Contains(lower, "auth"):
		return newErr(ErrAuthorizationViolation, "%s", text)
	case strings.Contains(lower, "permissions violation"):
		return newErr(ErrPermissionsViolation, "%s", text)
	case strings.Contains(lower, "stale connection"):
		return newErr(ErrStaleConnection, "%s", text)
	case strings.Contains(lower, "slow consumer"):
		return newErr(ErrSlowConsumer, "%s", text)
	case strings.Contains(lower, "maximum payload"):
		return newErr(ErrMaxPayloadExceeded, "%s", text)
	default:
		return newErr(ErrProtocolError, "%s", text)
	}
}

func isFatal(code ErrorCode) bool {
	switch code {
	case ErrAuthorizationViolation, ErrPermissionsViolation, ErrStaleConnection, ErrSlowConsumer:
		return true
	default:
		return false
	}
}

func isLameDuckSignal(text string) bool {
	return strings.Contains(strings.ToLower(text), "lame duck")
}

func (c *Conn) onLameDuck() {
	c.status.publish(StatusEvent{Kind: StatusLameDuck})
	if c.opts.ReconnectOnLameDuck {
		c.mu.Lock()
		entry := c.curEntry
		gen := c.generation
		c.mu.Unlock()
		addr := ""
		if entry != nil {
			addr = entry.url()
		}
		c.onTransportError(gen, newErr(ErrStaleConnection, "server %s entered lame-duck mode", addr))
	}
}

func (c *Conn) heartbeatLoop(gen uint64, stop chan struct{}) {
	interval := c.opts.PingInterval
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			out := atomic.AddInt32(&c.pingsOut, 1)
			if int(out) > c.opts.MaxPingsOutstanding {
				c.onTransportError(gen, newErr(ErrStaleConnection, "no PONG within %d heartbeats", c.opts.MaxPingsOutstanding))
				return
			}
			// Queued through flush so this PING holds its own place in the
			// flush-waiter FIFO and its PONG cannot resolve a user Flush.
			c.writer.flush()
		}
	}
}

// onTransportError is the single entry point for "the socket is no good
// anymore", whether discovered by the reader (a read error, a protocol
// error, or a fatal -ERR, which has already closed the connection), a
// heartbeat timeout, or a lame-duck reconnect. The writer task does not
// call it: a failed write only pauses the writer. It drives the
// CONNECTED -> RECONNECTING transition (spec.md §4.H).
func (c *Conn) onTransportError(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.generation || c.state == stateClosed || c.state == stateDraining {
		c.mu.Unlock()
		return
	}
	c.state = stateReconnecting
	entry := c.curEntry
	transport := c.transport
	if c.stopReader != nil {
		close(c.stopReader)
		c.stopReader = nil
	}
	if c.stopHeart != nil {
		close(c.stopHeart)
		c.stopHeart = nil
	}
	c.mu.Unlock()

	addr := ""
	if entry != nil {
		addr = entry.url()
	}
	c.status.publish(StatusEvent{Kind: StatusDisconnect, ServerURL: addr, Err: cause})
	if transport != nil {
		transport.Close()
	}
	c.writer.pause()

	if !c.opts.AllowReconnect {
		c.closeWithErr(cause)
		return
	}
	go c.reconnectLoop(cause)
}

func (c *Conn) reconnectLoop(cause error) {
	attempts := 0
	for {
		if c.pool.exhausted(attempts) {
			c.closeWithErr(wrapErr(ErrConnectionClosed, cause, "reconnect attempts exhausted"))
			return
		}
		entry := c.pool.next()
		if entry == nil {
			c.closeWithErr(wrapErr(ErrConnectionClosed, cause, "no reconnect candidates remain"))
			return
		}
		c.pool.recordAttempt(entry)
		attempts++
		time.Sleep(c.pool.backoffFor(attempts - 1))

		if err := c.connectOnce(entry); err != nil {
			continue
		}
		c.pool.recordSuccess(entry)
		c.status.publish(StatusEvent{Kind: StatusReconnect, ServerURL: entry.url()})
		return
	}
}

// Publish sends data with no reply subject (spec.md §6 publish options).
func (c *Conn) Publish(subject string, data []byte) error {
	return c.publish(subject, "", nil, data)
}

// PublishRequest sends data with reply set, without waiting for a
// response.
func (c *Conn) PublishRequest(subject, reply string, data []byte) error {
	return c.publish(subject, reply, nil, data)
}

// PublishMsg publishes a Msg, carrying its Header if present.
func (c *Conn) PublishMsg(m *Msg) error {
	return c.publish(m.Subject, m.Reply, m.Header, m.Data)
}

func (c *Conn) publish(subject, reply string, hdr Header, data []byte) error {
	if err := validatePublishSubject(subject); err != nil {
		return err
	}
	switch c.getState() {
	case stateClosed:
		return newErr(ErrConnectionClosed, "connection closed")
	case stateDraining:
		return newErr(ErrConnectionDraining, "connection draining")
	}
	c.mu.Lock()
	info := c.info
	headersOK := c.headersOK
	c.mu.Unlock()
	if info != nil && info.MaxPayload > 0 && int64(len(data)) > info.MaxPayload {
		return newErr(ErrMaxPayloadExceeded, "payload of %d bytes exceeds server max %d", len(data), info.MaxPayload)
	}

	var frame []byte
	if hdr == nil {
		frame = append(encodePub(subject, reply, len(data)), data...)
		frame = append(frame, crlf...)
	} else {
		if !headersOK {
			return newErr(ErrServerOptionNA, "server does not support headers")
		}
		hdrBlock, err := encodeHeader(hdr, 0, "")
		if err != nil {
			return err
		}
		total := len(hdrBlock) + len(data)
		frame = append(encodeHPub(subject, reply, len(hdrBlock), total), hdrBlock...)
		frame = append(frame, data...)
		frame = append(frame, crlf...)
	}
	if err := c.writer.publish(frame); err != nil {
		return err
	}
	c.mu.Lock()
	c.stats.OutMsgs++
	c.stats.OutBytes += uint64(len(data))
	c.mu.Unlock()
	return nil
}

// SubOptions configures Subscribe beyond the bare subject/queue (spec.md
// §6 subscription options).
type SubOptions struct {
	Max     uint64
	Timeout time.Duration
}

// Subscribe installs a subscription with no auto-unsubscribe and no
// inactivity timeout.
func (c *Conn) Subscribe(subject, queue string) (*Subscription, error) {
	return c.subscribe(subject, queue, 0, 0)
}

// SubscribeOpts installs a subscription honoring Max/Timeout.
func (c *Conn) SubscribeOpts(subject, queue string, opts SubOptions) (*Subscription, error) {
	return c.subscribe(subject, queue, opts.Max, opts.Timeout)
}

func (c *Conn) subscribe(subject, queue string, max uint64, timeout time.Duration) (*Subscription, error) {
	if err := validateSubscribeSubject(subject); err != nil {
		return nil, err
	}
	switch c.getState() {
	case stateClosed:
		return nil, newErr(ErrConnectionClosed, "connection closed")
	case stateDraining:
		return nil, newErr(ErrConnectionDraining, "connection draining")
	}
	sid := c.registry.allocSid()
	sub := newSubscription(c, sid, subject, queue)
	sub.timeout = timeout
	c.registry.add(sub)
	c.mu.Lock()
	c.subOrder = append(c.subOrder, sid)
	c.mu.Unlock()

	if err := c.writer.publish(encodeSub(subject, queue, sid)); err != nil {
		c.registry.remove(sid)
		return nil, err
	}
	if max > 0 {
		sub.setMax(max)
		if err := c.writer.publish(encodeUnsub(sid, int(max))); err != nil {
			return nil, err
		}
	}
	sub.resetInactivityTimer()
	return sub, nil
}

func (c *Conn) unsubscribe(sub *Subscription, max uint64) error {
	if max == 0 {
		if err := c.writer.publish(encodeUnsub(sub.sid, 0)); err != nil {
			return err
		}
		c.registry.remove(sub.sid)
		sub.closeWithError(nil)
		return nil
	}
	sub.setMax(max)
	return c.writer.publish(encodeUnsub(sub.sid, int(max)))
}

func (c *Conn) drainSubscription(sub *Subscription) error {
	sub.mu.Lock()
	sub.draining = true
	sub.mu.Unlock()
	if err := c.writer.publish(encodeUnsub(sub.sid, 0)); err != nil {
		return err
	}
	if err := c.Flush(); err != nil {
		return err
	}
	c.registry.remove(sub.sid)
	sub.closeWithError(nil)
	return nil
}

// Flush enqueues a PING and blocks until the matching PONG is observed
// (spec.md §4.E), guaranteeing every publish issued before it has reached
// the transport.
func (c *Conn) Flush() error {
	return c.FlushTimeout(c.opts.Timeout)
}

func (c *Conn) FlushTimeout(timeout time.Duration) error {
	ch, err := c.writer.flush()
	if err != nil {
		return err
	}
	if timeout <= 0 {
		return <-ch
	}
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return newErr(ErrTimeout, "flush did not complete within %s", timeout)
	}
}

// Request implements spec.md §4.G through the shared inbox mux. RequestOpts
// with NoMux set uses a disposable per-request subscription instead.
func (c *Conn) Request(subject string, data []byte, timeout time.Duration) (*Msg, error) {
	return c.mux.request(subject, data, RequestOptions{Timeout: timeout})
}

func (c *Conn) RequestOpts(subject string, data []byte, opts RequestOptions) (*Msg, error) {
	return c.mux.request(subject, data, opts)
}

// RequestWithContext honors ctx cancellation in addition to the request's
// own timeout.
func (c *Conn) RequestWithContext(ctx context.Context, subject string, data []byte) (*Msg, error) {
	timeout := c.opts.Timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	type res struct {
		msg *Msg
		err error
	}
	out := make(chan res, 1)
	go func() {
		m, err := c.Request(subject, data, timeout)
		out <- res{m, err}
	}()
	select {
	case r := <-out:
		return r.msg, r.err
	case <-ctx.Done():
		return nil, wrapErr(ErrTimeout, ctx.Err(), "request cancelled")
	}
}

// Drain performs the CONNECTED -> DRAINING -> CLOSED transition (spec.md
// §4.H): stop accepting new work, unsubscribe everything, flush, let every
// sink drain, then close.
func (c *Conn) Drain() error {
	c.mu.Lock()
	if c.state == stateClosed || c.state == stateDraining {
		c.mu.Unlock()
		return nil
	}
	c.state = stateDraining
	subs := c.registry.all()
	c.mu.Unlock()

	for _, sub := range subs {
		c.writer.publish(encodeUnsub(sub.sid, 0))
	}
	_ = c.Flush()
	for _, sub := range subs {
		c.registry.remove(sub.sid)
		sub.closeWithError(nil)
	}
	c.closeWithErr(nil)
	return nil
}

// Close is idempotent; concurrent callers all observe the same Closed()
// resolution (spec.md §5 "Cancellation").
func (c *Conn) Close() { c.closeWithErr(nil) }

func (c *Conn) closeWithErr(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = stateClosed
		transport := c.transport
		if c.stopReader != nil {
			close(c.stopReader)
		}
		if c.stopHeart != nil {
			close(c.stopHeart)
		}
		c.closedErr = err
		c.mu.Unlock()

		if transport != nil {
			transport.Close()
		}
		closeErr := err
		if closeErr == nil {
			closeErr = newErr(ErrConnectionClosed, "connection closed")
		}
		c.mux.closeAll(closeErr)
		c.writer.close(closeErr)
		for _, sub := range c.registry.all() {
			sub.closeWithError(closeErr)
		}
		c.status.closeAll()
		close(c.closedCh)
	})
}

// Closed returns a channel that is closed exactly once, when the
// connection reaches its terminal CLOSED state.
func (c *Conn) Closed() <-chan struct{} { return c.closedCh }

// Err returns the fatal error that caused Close, or nil if Close/Drain was
// user-initiated.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closedErr
}

// Status subscribes to the lifecycle event bus (component I).
func (c *Conn) Status() <-chan StatusEvent { return c.status.Subscribe() }

// Stats returns a snapshot of lifetime counters.
func (c *Conn) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ConnectedUrl returns the URL of the currently connected server, or "" if
// not connected.
func (c *Conn) ConnectedUrl() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.curEntry == nil {
		return ""
	}
	return c.curEntry.url()
}

// ConnectedServerId returns the server_id advertised in the most recent
// INFO, or "" if not yet known.
func (c *Conn) ConnectedServerId() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return ""
	}
	return c.info.ServerID
}
