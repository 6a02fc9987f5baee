package nats

import (
	"strings"
	"testing"
)

func TestIDGeneratorProducesUniqueTokens(t *testing.T) {
	g := newIDGenerator()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.next()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewInboxHasPrefix(t *testing.T) {
	g := newIDGenerator()
	inbox := g.newInbox()
	if !strings.HasPrefix(inbox, InboxPrefix) {
		t.Errorf("newInbox() = %q, want prefix %q", inbox, InboxPrefix)
	}
}
