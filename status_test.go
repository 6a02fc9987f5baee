package nats

import (
	"strconv"
	"testing"
)

func TestStatusBusDeliversToSubscriber(t *testing.T) {
	b := newStatusBus()
	sub := b.Subscribe()
	b.publish(StatusEvent{Kind: StatusReconnect, ServerURL: "nats://a:4222"})
	ev := <-sub
	if ev.Kind != StatusReconnect || ev.ServerURL != "nats://a:4222" {
		t.Errorf("got %+v", ev)
	}
}

func TestStatusBusDropsOldestWhenFull(t *testing.T) {
	b := newStatusBus()
	sub := b.Subscribe()
	for i := 0; i < defaultStatusBuffer+5; i++ {
		b.publish(StatusEvent{Kind: StatusUpdate, ServerURL: strconv.Itoa(i)})
	}
	count := 0
	for {
		select {
		case ev := <-sub:
			if count == 0 && ev.ServerURL != "5" {
				t.Errorf("oldest retained event = %q, want %q (events 0-4 dropped)", ev.ServerURL, "5")
			}
			count++
		default:
			if count > defaultStatusBuffer {
				t.Errorf("consumer buffered %d events, want at most %d", count, defaultStatusBuffer)
			}
			return
		}
	}
}

func TestStatusBusCloseAllClosesConsumerChannels(t *testing.T) {
	b := newStatusBus()
	sub := b.Subscribe()
	b.closeAll()
	if _, ok := <-sub; ok {
		t.Error("expected consumer channel to be closed")
	}
}

func TestStatusBusNewSubscriberMissesPriorEvents(t *testing.T) {
	b := newStatusBus()
	b.publish(StatusEvent{Kind: StatusDisconnect})
	sub := b.Subscribe()
	select {
	case ev := <-sub:
		t.Errorf("new subscriber should not see events published before Subscribe, got %+v", ev)
	default:
	}
}
