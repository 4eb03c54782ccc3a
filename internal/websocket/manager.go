package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"notes-sync-server/internal/domain"

	"github.com/sirupsen/logrus"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager fans note list updates out to every connected subscriber.
type Manager struct {
	clients        map[string]*Client
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	maxConnections int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	logger         logrus.FieldLogger
}

// NewManager caps the number of subscribers at maxConnections; inbound frames
// larger than maxMessageSize close the connection.
func NewManager(maxConnections int, maxMessageSize int64, writeWait, pongWait, pingPeriod time.Duration, logger logrus.FieldLogger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		maxConnections: maxConnections,
		maxMessageSize: maxMessageSize,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
		logger:         logger,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if len(m.clients) >= m.maxConnections {
		m.logger.WithField("client_id", client.ID).Warn("max websocket connections reached")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.logger.WithField("client_id", client.ID).Info("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
		m.logger.WithField("client_id", client.ID).Info("client unregistered")
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.logger.WithError(err).Warn("error unmarshaling message")
		return
	}

	switch msg.Type {
	case TypePing:
		pong, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		m.SendToClient(clientMsg.Client.ID, pong)
	default:
		m.logger.WithField("type", msg.Type).Debug("unknown message type")
	}
}

// BroadcastNotes is a NoteStore subscriber: it pushes the reloaded list to
// every client.
func (m *Manager) BroadcastNotes(notes []domain.Note) {
	msg, err := NewNotesMessage(TypeNotesReloaded, notes)
	if err != nil {
		m.logger.WithError(err).Error("failed to build notes message")
		return
	}
	if err := m.Broadcast(msg); err != nil {
		m.logger.WithError(err).Error("failed to broadcast notes")
	}
}

func (m *Manager) Broadcast(message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	var stalled []*Client
	for id, client := range m.clients {
		select {
		case client.Send <- messageBytes:
		default:
			m.logger.WithField("client_id", id).Warn("client send buffer full, closing connection")
			stalled = append(stalled, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range stalled {
		m.unregisterClient(client)
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.logger.WithField("client_id", clientID).Warn("client send buffer full")
	}

	return nil
}

func (m *Manager) Connections() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}
