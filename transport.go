package nats

import (
	"crypto/tls"
	"io"
	"net"
	"net/url"
	"time"
)

// byteDuplex is the abstract transport the core consumes (spec.md §1): a
// reliable bidirectional byte stream with connect/read/write/close. TCP,
// TLS, and WebSocket framing are all external collaborators that satisfy
// this interface; the protocol engine never knows which one it's talking
// to.
type byteDuplex interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// dialer opens a byteDuplex to a server entry. It is itself pluggable so
// tests can substitute an in-memory duplex (net.Pipe) without a real
// socket (see conn_test.go).
type dialer interface {
	Dial(entry *serverEntry, timeout time.Duration) (byteDuplex, error)
}

// tcpDialer is the default dialer: plain TCP, upgraded to TLS after INFO
// if the caller requested or the server requires it.
type tcpDialer struct {
	tlsConfig *tls.Config
}

func (d *tcpDialer) Dial(entry *serverEntry, timeout time.Duration) (byteDuplex, error) {
	conn, err := net.DialTimeout("tcp", entry.addr(), timeout)
	if err != nil {
		return nil, wrapErr(ErrConnectionRefused, err, "dial %s", entry.addr())
	}
	return conn, nil
}

// upgradeTLS wraps an established plaintext connection in TLS, used once
// the handler has seen INFO.tls_required or the caller passed the tls
// option (spec.md §4.H handshake transition).
func upgradeTLS(conn byteDuplex, host string, cfg *tls.Config) (byteDuplex, error) {
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	tc := tls.Client(conn.(net.Conn), cfg)
	if err := tc.Handshake(); err != nil {
		return nil, wrapErr(ErrConnectionRefused, err, "tls handshake with %s", host)
	}
	return tc, nil
}

// wsURL rewrites an entry's scheme for a WebSocket-framed connection
// (ws/wss), used by transport_ws.go's dialer.
func wsURL(entry *serverEntry, secure bool) string {
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: entry.addr()}
	return u.String()
}
