package websocket

import (
	"encoding/json"
	"time"

	"notes-sync-server/internal/domain"
)

type MessageType string

const (
	TypeNotesSnapshot MessageType = "notes_snapshot"
	TypeNotesReloaded MessageType = "notes_reloaded"
	TypePing          MessageType = "ping"
	TypePong          MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type NotesPayload struct {
	Count int           `json:"count"`
	Notes []domain.Note `json:"notes"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func NewNotesMessage(msgType MessageType, notes []domain.Note) (*Message, error) {
	if notes == nil {
		notes = []domain.Note{}
	}
	return NewMessage(msgType, &NotesPayload{Count: len(notes), Notes: notes})
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
