package nats

import (
	"strings"
	"sync"
	"time"
)

// pendingRequest is one in-flight request() call awaiting its reply
// (spec.md §3 "Pending request"): at most one resolution ever happens,
// whichever of reply/timeout/cancel occurs first.
type pendingRequest struct {
	token string
	result chan requestResult
	timer  *time.Timer
	mu     sync.Mutex
	done   bool
}

type requestResult struct {
	msg *Msg
	err error
}

func (p *pendingRequest) resolve(res requestResult) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.result <- res
}

// requestMux demultiplexes replies to many concurrent request() calls
// through a single wildcard inbox subscription (spec.md §4.G).
type requestMux struct {
	conn   *Conn
	mu     sync.Mutex
	prefix string
	sub    *Subscription
	ids    *idGenerator
	pend   map[string]*pendingRequest
}

func newRequestMux(conn *Conn) *requestMux {
	return &requestMux{conn: conn, ids: newIDGenerator(), pend: make(map[string]*pendingRequest)}
}

// ensure installs the wildcard inbox subscription on first use. Safe to
// call repeatedly; after a reconnect resetAfterReconnect has dropped the
// previous subscription, so the next call installs a fresh one.
func (m *requestMux) ensure() (*Subscription, error) {
	m.mu.Lock()
	if m.sub != nil {
		sub := m.sub
		m.mu.Unlock()
		return sub, nil
	}
	m.prefix = m.conn.ids.newInbox()
	wildcard := m.prefix + ".*"
	m.mu.Unlock()

	sub, err := m.conn.subscribe(wildcard, "", 0, 0)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
	go m.dispatchLoop(sub)
	return sub, nil
}

func (m *requestMux) dispatchLoop(sub *Subscription) {
	for msg := range sub.Messages() {
		token := lastSubjectToken(msg.Subject)
		m.mu.Lock()
		pr, ok := m.pend[token]
		if ok {
			delete(m.pend, token)
		}
		m.mu.Unlock()
		if !ok {
			// Unknown token: either a stale reply after timeout/cancel, or a
			// reply for a request issued on a prior connection generation.
			continue
		}
		pr.resolve(m.translate(msg))
	}
}

// translate applies the headers-in-requests rule from spec.md §4.G: a
// reply carrying an inline "503 No Responders" status becomes a
// NO_RESPONDERS error rather than a successful result.
func (m *requestMux) translate(msg *Msg) requestResult {
	if msg.Header != nil {
		if code := msg.Header.Get("Status"); code == "503" {
			return requestResult{err: newErr(ErrNoResponders, "no responders available for request")}
		}
	}
	return requestResult{msg: msg}
}

func lastSubjectToken(subject string) string {
	idx := strings.LastIndexByte(subject, '.')
	if idx < 0 {
		return subject
	}
	return subject[idx+1:]
}

// RequestOptions configures a single request() call (spec.md §6).
type RequestOptions struct {
	Timeout time.Duration
	Header  Header
	NoMux   bool
}

// request implements both the muxed and no_mux request paths.
func (m *requestMux) request(subject string, data []byte, opts RequestOptions) (*Msg, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.NoMux {
		return m.requestNoMux(subject, data, opts)
	}

	sub, err := m.ensure()
	if err != nil {
		return nil, err
	}
	token := m.ids.next()
	pr := &pendingRequest{token: token, result: make(chan requestResult, 1)}
	m.mu.Lock()
	m.pend[token] = pr
	m.mu.Unlock()

	pr.timer = time.AfterFunc(opts.Timeout, func() {
		m.mu.Lock()
		if cur, ok := m.pend[token]; ok && cur == pr {
			delete(m.pend, token)
		}
		m.mu.Unlock()
		pr.resolve(requestResult{err: newErr(ErrTimeout, "request to %q timed out after %s", subject, opts.Timeout)})
	})

	reply := m.prefix + "." + token
	if err := m.conn.publish(subject, reply, opts.Header, data); err != nil {
		m.cancel(token)
		return nil, err
	}
	_ = sub

	res := <-pr.result
	return res.msg, res.err
}

// cancel removes a pending entry without resolving it (spec.md §5
// "Cancellation").
func (m *requestMux) cancel(token string) {
	m.mu.Lock()
	delete(m.pend, token)
	m.mu.Unlock()
}

func (m *requestMux) requestNoMux(subject string, data []byte, opts RequestOptions) (*Msg, error) {
	inbox := m.conn.ids.newInbox()
	sub, err := m.conn.subscribe(inbox, "", 1, 0)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	if err := m.conn.publish(subject, inbox, opts.Header, data); err != nil {
		return nil, err
	}
	msg, err := sub.NextMsg(opts.Timeout)
	if err != nil {
		return nil, err
	}
	res := m.translate(msg)
	return res.msg, res.err
}

// closeAll fails every pending request with the given error; called when
// the connection transitions to CLOSED.
func (m *requestMux) closeAll(err error) {
	m.mu.Lock()
	pend := m.pend
	m.pend = make(map[string]*pendingRequest)
	m.mu.Unlock()
	for _, pr := range pend {
		pr.resolve(requestResult{err: err})
	}
}

// resetAfterReconnect clears the mux's wildcard subscription handle so a
// fresh one is installed (and re-subscribed on the wire) the next time
// request() is called after a reconnect. Outstanding pending requests
// across the old subscription are left to their own timers; any in-flight
// reply was lost with the old connection generation, matching spec.md's
// "no message ordering across reconnects" non-goal.
func (m *requestMux) resetAfterReconnect() {
	m.mu.Lock()
	old := m.sub
	m.sub = nil
	m.mu.Unlock()
	if old != nil {
		// Removed before replaySubscriptions runs, so the old wildcard is
		// not re-sent on the new socket and its dispatchLoop ends.
		m.conn.registry.remove(old.sid)
		old.closeWithError(nil)
	}
}
