package nats

import (
	"time"

	"github.com/gorilla/websocket"
)

// wsDialer opens the transport as WebSocket-framed binary messages instead
// of a raw TCP stream, per spec.md §1's "optionally WebSocket-framed"
// transport. Grounded on github.com/gorilla/websocket, already present in
// the example pack (encoredev-encore/go.mod).
type wsDialer struct {
	secure bool
}

func (d *wsDialer) Dial(entry *serverEntry, timeout time.Duration) (byteDuplex, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(wsURL(entry, d.secure), nil)
	if err != nil {
		return nil, wrapErr(ErrConnectionRefused, err, "websocket dial %s", entry.addr())
	}
	return &wsByteDuplex{conn: conn}, nil
}

// wsByteDuplex adapts a *websocket.Conn's message-oriented API to the
// byteDuplex io.Reader/io.Writer contract the parser expects, buffering
// whatever is left of a partial binary message between Read calls.
type wsByteDuplex struct {
	conn *websocket.Conn
	rest []byte
}

func (w *wsByteDuplex) Read(p []byte) (int, error) {
	for len(w.rest) == 0 {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		w.rest = data
	}
	n := copy(p, w.rest)
	w.rest = w.rest[n:]
	return n, nil
}

func (w *wsByteDuplex) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsByteDuplex) Close() error { return w.conn.Close() }

func (w *wsByteDuplex) SetDeadline(t time.Time) error {
	if err := w.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return w.conn.SetWriteDeadline(t)
}
