package nats

import (
	"github.com/nats-io/nuid"
)

// InboxPrefix is the subject root under which request/reply inboxes are
// created. A fresh connection mints one random tail per generation.
const InboxPrefix = "_INBOX."

// idGenerator produces the 22-character tokens described in spec.md §4.A:
// a 12-character random prefix plus a base-62 counter of 10 characters that
// increments by a randomized step and reseeds its prefix on overflow. That
// is exactly the algorithm github.com/nats-io/nuid implements (it is NATS's
// own reference generator), so rather than re-deriving it by hand this
// module depends on it directly — the teacher's patterns/nats/go.mod
// already carries nuid as a transitive dependency of nats.go.
type idGenerator struct {
	g *nuid.NUID
}

func newIDGenerator() *idGenerator {
	return &idGenerator{g: nuid.New()}
}

// next returns a fresh 22-character token.
func (g *idGenerator) next() string {
	return g.g.Next()
}

// newInbox returns a unique reply-subject root scoped to one connection,
// e.g. "_INBOX.<22-char-token>". Request tokens are appended as a further
// subject token: "_INBOX.<token>.<request-token>".
func (g *idGenerator) newInbox() string {
	return InboxPrefix + g.next()
}
