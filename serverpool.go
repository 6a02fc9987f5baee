package nats

import (
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultURL is used when no servers are configured.
const DefaultURL = "nats://127.0.0.1:4222"

// serverEntry is spec.md §3's "Server descriptor".
type serverEntry struct {
	Host             string
	Port             string
	Scheme           string
	WasDiscovered    bool
	ReconnectAttempts int
	LastConnectedAt  time.Time
}

func (s *serverEntry) addr() string { return s.Host + ":" + s.Port }

func (s *serverEntry) url() string { return s.Scheme + "://" + s.addr() }

// serverPool tracks known servers, iteration order, and reconnect
// accounting (spec.md §4.C).
type serverPool struct {
	mu             sync.Mutex
	entries        []*serverEntry
	lastTriedIdx   int
	noRandomize    bool
	maxReconnects  int // global cap across the whole pool; -1 = unlimited
	perServerCap   int
	baseBackoff    time.Duration
	status         *statusBus
}

func newServerPool(urls []string, noRandomize bool, maxReconnects, perServerCap int, baseBackoff time.Duration, status *statusBus) (*serverPool, error) {
	if len(urls) == 0 {
		urls = []string{DefaultURL}
	}
	pool := &serverPool{
		noRandomize:   noRandomize,
		maxReconnects: maxReconnects,
		perServerCap:  perServerCap,
		baseBackoff:   baseBackoff,
		status:        status,
	}
	for _, u := range urls {
		entry, err := parseServerURL(u)
		if err != nil {
			return nil, err
		}
		pool.entries = append(pool.entries, entry)
	}
	return pool, nil
}

func parseServerURL(raw string) (*serverEntry, error) {
	if !strings.Contains(raw, "://") {
		raw = "nats://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, wrapErr(ErrConnectionRefused, err, "invalid server url %q", raw)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "4222"
	}
	return &serverEntry{Host: host, Port: port, Scheme: u.Scheme}, nil
}

// seedContains reports whether addr (host:port) was supplied by the user,
// as opposed to discovered via gossip; user-seeded entries are never
// dropped on an INFO update (spec.md's pool invariant).
func (p *serverPool) seedContains(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.addr() == addr && !e.WasDiscovered {
			return true
		}
	}
	return false
}

// applyDiscovered reconciles connect_urls gossiped in an INFO frame
// against the current pool membership (spec.md §4.C).
func (p *serverPool) applyDiscovered(urls []string) {
	p.mu.Lock()
	seen := make(map[string]bool, len(urls))
	var added []string
	for _, raw := range urls {
		entry, err := parseServerURL(raw)
		if err != nil {
			continue
		}
		addr := entry.addr()
		seen[addr] = true
		found := false
		for _, e := range p.entries {
			if e.addr() == addr {
				found = true
				break
			}
		}
		if !found {
			entry.WasDiscovered = true
			p.entries = append(p.entries, entry)
			added = append(added, addr)
		}
	}
	var removed []string
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.WasDiscovered && !seen[e.addr()] {
			removed = append(removed, e.addr())
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	p.mu.Unlock()

	if (len(added) > 0 || len(removed) > 0) && p.status != nil {
		p.status.publish(StatusEvent{Kind: StatusUpdate, Update: &PoolUpdate{Added: added, Removed: removed}})
	}
}

// PoolUpdate describes a server-pool membership change (spec.md §4.C).
type PoolUpdate struct {
	Added   []string
	Removed []string
}

// next returns the next server to try, round-robining from lastTriedIdx,
// randomized among discovered entries unless disabled, skipping entries
// that have exhausted their per-server cap. Returns nil when every
// candidate is exhausted.
func (p *serverPool) next() *serverEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.entries)
	if n == 0 {
		return nil
	}
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		order = append(order, (p.lastTriedIdx+i)%n)
	}
	if !p.noRandomize {
		var pos []int
		for i, idx := range order {
			if p.entries[idx].WasDiscovered {
				pos = append(pos, i)
			}
		}
		rand.Shuffle(len(pos), func(i, j int) {
			order[pos[i]], order[pos[j]] = order[pos[j]], order[pos[i]]
		})
	}
	for _, idx := range order {
		e := p.entries[idx]
		if p.perServerCap > 0 && e.ReconnectAttempts >= p.perServerCap {
			continue
		}
		p.lastTriedIdx = idx
		return e
	}
	return nil
}

// recordAttempt increments the chosen entry's reconnect_attempts counter.
func (p *serverPool) recordAttempt(e *serverEntry) {
	p.mu.Lock()
	e.ReconnectAttempts++
	p.mu.Unlock()
}

// recordSuccess resets the entry's counter and timestamps the connect.
func (p *serverPool) recordSuccess(e *serverEntry) {
	p.mu.Lock()
	e.ReconnectAttempts = 0
	e.LastConnectedAt = time.Now()
	p.mu.Unlock()
}

// exhausted reports whether every entry has hit its per-server cap, or the
// pool-wide cap has been reached via totalAttempts.
func (p *serverPool) exhausted(totalAttempts int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxReconnects >= 0 && totalAttempts >= p.maxReconnects {
		return true
	}
	if p.perServerCap <= 0 {
		return false
	}
	for _, e := range p.entries {
		if e.ReconnectAttempts < p.perServerCap {
			return false
		}
	}
	return true
}

// backoffFor returns a jittered wait duration for the given attempt using
// the cenkalti/backoff library already present in the pack
// (encoredev-encore's go.mod). Its ExponentialBackOff runs with Multiplier
// 1.0, so every attempt waits the base interval ±30%; the wait does not
// grow with the attempt number.
func (p *serverPool) backoffFor(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.baseBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = 2 * time.Second
	}
	b.MaxInterval = 2 * time.Minute
	b.RandomizationFactor = 0.3
	b.Multiplier = 1.0 // spec.md describes jitter around a base wait, not
	// unbounded exponential growth, so the interval is held flat and only
	// jittered; Reset/NextBackOff still gives us the randomization for free.
	b.Reset()
	var d time.Duration
	for i := 0; i <= attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
