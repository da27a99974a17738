package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/soohoonc/jprty/internal/conns"
	"github.com/soohoonc/jprty/internal/events"
)

func TestSend(t *testing.T) {
	cr := conns.NewRegistry()
	g := New(cr, nil)

	c := &Client{ID: "c1", Send: make(chan []byte, 16)}
	g.register(c)

	g.Send("c1", events.Notification{Type: events.Error, Payload: events.ErrorPayload{Kind: "NotInRoom", Message: "x"}})

	select {
	case data := <-c.Send:
		var got events.Notification
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != events.Error {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("c1 did not receive message")
	}
}

func TestBroadcast_RoomScoped(t *testing.T) {
	cr := conns.NewRegistry()
	g := New(cr, nil)

	c1 := &Client{ID: "c1", Send: make(chan []byte, 16)}
	c2 := &Client{ID: "c2", Send: make(chan []byte, 16)}
	c3 := &Client{ID: "c3", Send: make(chan []byte, 16)}
	g.register(c1)
	g.register(c2)
	g.register(c3)

	cr.Bind("c1", "p1", "room1")
	cr.Bind("c2", "p2", "room1")
	cr.Bind("c3", "p3", "room2")

	g.Broadcast("room1", events.Notification{Type: events.WindowOpened})

	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.Send:
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("%s did not receive room1 broadcast", c.ID)
		}
	}
	select {
	case <-c3.Send:
		t.Fatal("room2 client received room1 broadcast")
	default:
	}
}

func TestBroadcast_DropsWhenFull(t *testing.T) {
	cr := conns.NewRegistry()
	g := New(cr, nil)

	// Channel with capacity 1
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	g.register(c)
	cr.Bind("c1", "p1", "room1")

	// Fill the channel
	c.Send <- []byte("filler")

	// This should not block — frame dropped
	g.Broadcast("room1", events.Notification{Type: events.WindowOpened})

	data := <-c.Send
	if string(data) != "filler" {
		t.Fatalf("expected filler, got: %s", data)
	}
	select {
	case <-c.Send:
		t.Fatal("should be empty after draining filler")
	default:
	}
}

func TestUnregister(t *testing.T) {
	cr := conns.NewRegistry()
	g := New(cr, nil)

	c := &Client{ID: "c1", Send: make(chan []byte, 16)}
	g.register(c)
	g.unregister("c1")

	// Send channel should be closed
	if _, ok := <-c.Send; ok {
		t.Fatal("c1.Send should be closed")
	}

	// Should not panic on repeat or unknown ids
	g.unregister("c1")
	g.unregister("nonexistent")

	// Sending to a gone client is a no-op
	g.Send("c1", events.Notification{Type: events.WindowOpened})
}
