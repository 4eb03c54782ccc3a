package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/logger"
)

func newTestManager(max int) *Manager {
	return NewManager(max, 1024, time.Second, time.Minute, 54*time.Second, logger.Discard())
}

func TestManager_BroadcastNotes(t *testing.T) {
	m := newTestManager(5)
	c1 := NewClient("c1", nil, m)
	c2 := NewClient("c2", nil, m)
	m.registerClient(c1)
	m.registerClient(c2)

	m.BroadcastNotes([]domain.Note{{ID: "doc-1", NID: 1, Title: "A", Image: "a"}})

	for _, c := range []*Client{c1, c2} {
		select {
		case raw := <-c.Send:
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("bad message: %v", err)
			}
			if msg.Type != TypeNotesReloaded {
				t.Errorf("expected %s, got %s", TypeNotesReloaded, msg.Type)
			}
			var payload NotesPayload
			if err := msg.UnmarshalPayload(&payload); err != nil {
				t.Fatalf("bad payload: %v", err)
			}
			if payload.Count != 1 || payload.Notes[0].ID != "doc-1" {
				t.Errorf("unexpected payload %+v", payload)
			}
		default:
			t.Errorf("client %s received nothing", c.ID)
		}
	}
}

func TestManager_MaxConnections(t *testing.T) {
	m := newTestManager(1)
	c1 := NewClient("c1", nil, m)
	c2 := NewClient("c2", nil, m)
	m.registerClient(c1)
	m.registerClient(c2)

	if m.Connections() != 1 {
		t.Errorf("expected 1 connection, got %d", m.Connections())
	}
	if _, ok := <-c2.Send; ok {
		t.Error("expected rejected client's channel to be closed")
	}
}

func TestManager_Unregister(t *testing.T) {
	m := newTestManager(5)
	c1 := NewClient("c1", nil, m)
	m.registerClient(c1)
	m.unregisterClient(c1)
	m.unregisterClient(c1)

	if m.Connections() != 0 {
		t.Errorf("expected no connections, got %d", m.Connections())
	}
}

func TestManager_PingPong(t *testing.T) {
	m := newTestManager(5)
	c1 := NewClient("c1", nil, m)
	m.registerClient(c1)

	ping, _ := json.Marshal(Message{Type: TypePing})
	m.processMessage(&ClientMessage{Client: c1, Message: ping})

	select {
	case raw := <-c1.Send:
		var msg Message
		json.Unmarshal(raw, &msg)
		if msg.Type != TypePong {
			t.Errorf("expected pong, got %s", msg.Type)
		}
	default:
		t.Error("expected a pong")
	}
}
