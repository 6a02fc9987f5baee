package nats

import (
	"bytes"
	"io"
	"sync"
)

// defaultHighWaterMark bounds the outbound queue (in bytes) before publish
// calls start failing with SLOW_CONSUMER rather than growing unbounded.
const defaultHighWaterMark = 64 * 1024 * 1024

// defaultReplayBuffer bounds how many bytes of already-enqueued frames are
// retained across a reconnect for replay on the new socket.
const defaultReplayBuffer = 8 * 1024 * 1024

// flushWaiter is one pending flush() call, resolved in FIFO order as PONGs
// arrive (spec.md §4.E "Flush queue").
type flushWaiter struct {
	done chan error
}

// outboundWriter is the single task that drains queued frames onto the
// transport (component E). publish() is synchronous and never blocks on
// I/O; it only blocks briefly on the internal mutex.
type outboundWriter struct {
	mu            sync.Mutex
	queue         [][]byte
	queuedBytes   int
	highWaterMark int

	paused      bool
	replayLimit int
	dropped     func(n int) // invoked when the replay buffer overflows

	flushQ []*flushWaiter

	out    io.Writer
	notify chan struct{}
	closed bool
}

func newOutboundWriter(highWater, replayLimit int, dropped func(int)) *outboundWriter {
	if highWater <= 0 {
		highWater = defaultHighWaterMark
	}
	if replayLimit <= 0 {
		replayLimit = defaultReplayBuffer
	}
	return &outboundWriter{
		highWaterMark: highWater,
		replayLimit:   replayLimit,
		dropped:       dropped,
		notify:        make(chan struct{}, 1),
	}
}

// attach points the writer at a live transport and starts (or resumes)
// draining. Called once per successful (re)connect.
func (w *outboundWriter) attach(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.paused = false
	w.mu.Unlock()
	w.kick()
}

// pause stops the writer from draining to the transport; frames already
// queued, and any newly published while paused, are retained up to
// replayLimit for replay once attach is called again.
func (w *outboundWriter) pause() {
	w.mu.Lock()
	w.paused = true
	w.out = nil
	w.mu.Unlock()
}

// publish enqueues a single frame (a control line, or a control line plus
// payload) synchronously. It returns SLOW_CONSUMER if the queue has grown
// past the high-water mark.
func (w *outboundWriter) publish(frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return newErr(ErrConnectionClosed, "connection closed")
	}
	if w.queuedBytes+len(frame) > w.highWaterMark {
		return newErr(ErrSlowConsumer, "outbound queue exceeds high-water mark")
	}
	if w.paused && w.queuedBytes+len(frame) > w.replayLimit {
		if w.dropped != nil {
			w.dropped(len(frame))
		}
		return newErr(ErrSlowConsumer, "reconnect replay buffer full, frame dropped")
	}
	w.queue = append(w.queue, frame)
	w.queuedBytes += len(frame)
	w.kickLocked()
	return nil
}

// flush enqueues a PING and arranges for the returned channel to receive
// nil once the matching PONG is observed (or an error if the connection is
// torn down first). See resolveNextFlush.
func (w *outboundWriter) flush() (chan error, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, newErr(ErrConnectionClosed, "connection closed")
	}
	fw := &flushWaiter{done: make(chan error, 1)}
	w.flushQ = append(w.flushQ, fw)
	w.queue = append(w.queue, encodePing())
	w.queuedBytes += len("PING\r\n")
	w.kickLocked()
	w.mu.Unlock()
	return fw.done, nil
}

// resolveNextFlush is called by the reader on every inbound PONG; it
// resolves the oldest pending flush waiter, preserving FIFO order.
func (w *outboundWriter) resolveNextFlush() {
	w.mu.Lock()
	var fw *flushWaiter
	if len(w.flushQ) > 0 {
		fw = w.flushQ[0]
		w.flushQ = w.flushQ[1:]
	}
	w.mu.Unlock()
	if fw != nil {
		fw.done <- nil
	}
}

// failAllFlushes rejects every pending flush waiter, used when the
// connection closes or goes fatal while flushes are outstanding.
func (w *outboundWriter) failAllFlushes(err error) {
	w.mu.Lock()
	waiters := w.flushQ
	w.flushQ = nil
	w.mu.Unlock()
	for _, fw := range waiters {
		fw.done <- err
	}
}

func (w *outboundWriter) kick() {
	w.mu.Lock()
	w.kickLocked()
	w.mu.Unlock()
}

func (w *outboundWriter) kickLocked() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// run drains the queue onto the transport until stop is closed. It
// coalesces all frames queued at the time of waking into a single write,
// matching spec.md §4.E's "coalesces adjacent frames into one buffer".
func (w *outboundWriter) run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-w.notify:
		}
		for {
			w.mu.Lock()
			if w.paused || w.out == nil || len(w.queue) == 0 {
				w.mu.Unlock()
				break
			}
			frames := w.queue
			out := w.out
			w.queue = nil
			w.queuedBytes = 0
			w.mu.Unlock()

			var buf bytes.Buffer
			for _, f := range frames {
				buf.Write(f)
			}
			if _, err := out.Write(buf.Bytes()); err != nil {
				// The handler is not told from here; the writer just stops
				// trying until reattached.
				w.pause()
				return
			}
		}
	}
}

// close marks the writer permanently closed and fails any outstanding
// flush waiters.
func (w *outboundWriter) close(err error) {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.failAllFlushes(err)
}
