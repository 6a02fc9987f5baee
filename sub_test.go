package nats

import "testing"

func TestSubRegistryAllocSidIsMonotonic(t *testing.T) {
	r := newSubRegistry()
	a := r.allocSid()
	b := r.allocSid()
	if a == b {
		t.Errorf("allocSid() returned %q twice", a)
	}
}

func TestSubRegistryAddGetRemove(t *testing.T) {
	r := newSubRegistry()
	sub := newSubscription(nil, "1", "foo", "")
	r.add(sub)
	got, ok := r.get("1")
	if !ok || got != sub {
		t.Fatalf("get(1) = %v, %v", got, ok)
	}
	r.remove("1")
	if _, ok := r.get("1"); ok {
		t.Error("get(1) after remove = ok, want not found")
	}
}

func TestSubscriptionDeliverAndNextMsg(t *testing.T) {
	sub := newSubscription(nil, "1", "foo", "")
	msg := &Msg{Subject: "foo", Data: []byte("hi")}
	if removeNow := sub.deliver(msg); removeNow {
		t.Fatal("deliver() reported removeNow on first message")
	}
	got, err := sub.NextMsg(0)
	if err != nil {
		t.Fatalf("NextMsg() error = %v", err)
	}
	if string(got.Data) != "hi" {
		t.Errorf("Data = %q, want hi", got.Data)
	}
}

func TestSubscriptionAutoUnsubscribeAtMax(t *testing.T) {
	sub := newSubscription(nil, "1", "foo", "")
	sub.setMax(1)
	removeNow := sub.deliver(&Msg{Subject: "foo"})
	if !removeNow {
		t.Fatal("deliver() should report removeNow once Max is reached")
	}
	if _, ok := <-sub.Messages(); !ok {
		t.Error("expected the buffered message to still be delivered before close")
	}
	if _, ok := <-sub.Messages(); ok {
		t.Error("expected Messages() channel to be closed after Max reached")
	}
}

func TestSubscriptionCloseWithErrorIsIdempotent(t *testing.T) {
	sub := newSubscription(nil, "1", "foo", "")
	sub.closeWithError(nil)
	sub.closeWithError(nil) // must not panic on double-close
	if _, ok := <-sub.Messages(); ok {
		t.Error("expected Messages() channel to be closed")
	}
}
