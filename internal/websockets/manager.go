// Package websockets pushes readiness updates to connected clients and turns
// their visibility signals into readiness resumes.
package websockets

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	sessionController "clinicdesk/internal/controllers/session"
	"clinicdesk/internal/events"
	"clinicdesk/internal/handlers/middleware"
	"clinicdesk/internal/logger"
	. "clinicdesk/internal/models"
	"clinicdesk/internal/services"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	MessageTypeReadiness  = "readiness"
	MessageTypeVisibility = "visibility"
	MessageTypeError      = "error"

	ActionResume  = "resume"
	ActionUpdated = "updated"
	ActionCurrent = "current"

	sendBuffer   = 16
	writeTimeout = 10 * time.Second
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	Action    string         `json:"action,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type Subscriber interface {
	Subscribe(channel string, handler func(events.Event)) error
}

type Client struct {
	ID      string
	ActorID string
	conn    *websocket.Conn
	send    chan []byte
}

type Manager struct {
	sessions *sessionController.SessionController
	log      logger.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func New(eventBus Subscriber, sessions *sessionController.SessionController) (*Manager, error) {
	log := logger.New("websockets").Function("New")

	manager := &Manager{
		sessions: sessions,
		log:      logger.New("websockets"),
		clients:  make(map[string]map[*Client]struct{}),
	}

	if err := eventBus.Subscribe(services.ReadinessChannel, manager.handleEvent); err != nil {
		return nil, log.Err("failed to subscribe to readiness events", err)
	}

	return manager, nil
}

// HandleWebSocket serves one authenticated connection until it closes.
func (m *Manager) HandleWebSocket(conn *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	actorID, _ := conn.Locals(middleware.ActorIDKey).(string)
	if actorID == "" {
		log.Warn("websocket connection without actor")
		_ = conn.Close()
		return
	}

	client := &Client{
		ID:      uuid.New().String(),
		ActorID: actorID,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	m.register(client)
	defer m.unregister(client)

	done := make(chan struct{})
	go m.writePump(client, done)
	defer close(done)

	ctx := context.Background()
	if session, err := m.sessions.Get(ctx, actorID); err == nil {
		m.sendStatus(client, ActionCurrent, session.Readiness.Status())
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Debug("websocket closed", "actorID", actorID, "clientID", client.ID, "error", err)
			return
		}
		m.handleMessage(ctx, client, raw)
	}
}

func (m *Manager) handleMessage(ctx context.Context, client *Client, raw []byte) {
	log := m.log.Function("handleMessage")

	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		log.Debug("ignoring malformed message", "clientID", client.ID, "error", err)
		m.sendError(client, "malformed message")
		return
	}

	if message.Type != MessageTypeVisibility || message.Action != ActionResume {
		log.Debug("ignoring message", "type", message.Type, "action", message.Action)
		return
	}

	session, err := m.sessions.Get(ctx, client.ActorID)
	if err != nil {
		log.Er("failed to get session", err, "actorID", client.ActorID)
		m.sendError(client, "session unavailable")
		return
	}

	if _, err := session.Readiness.Resume(ctx); err != nil {
		log.Er("failed to resume readiness", err, "actorID", client.ActorID)
	}
}

// handleEvent forwards a bus event to every connection of the event's actor.
func (m *Manager) handleEvent(event events.Event) {
	if event.Type != MessageTypeReadiness || event.UserID == "" {
		return
	}

	m.deliver(event.UserID, Message{
		ID:        event.ID,
		Type:      MessageTypeReadiness,
		Channel:   event.Channel,
		Action:    event.Action,
		UserID:    event.UserID,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	})
}

func (m *Manager) sendStatus(client *Client, action string, status ReadinessStatus) {
	m.enqueue(client, Message{
		ID:     uuid.New().String(),
		Type:   MessageTypeReadiness,
		Action: action,
		UserID: client.ActorID,
		Data: map[string]any{
			"profileComplete": status.ProfileComplete,
			"clinicComplete":  status.ClinicComplete,
			"doctorComplete":  status.DoctorComplete,
			"regionComplete":  status.RegionComplete,
			"allComplete":     status.AllComplete,
			"lastChecked":     status.LastChecked,
		},
		Timestamp: time.Now(),
	})
}

func (m *Manager) sendError(client *Client, text string) {
	m.enqueue(client, Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeError,
		Data:      map[string]any{"message": text},
		Timestamp: time.Now(),
	})
}

func (m *Manager) deliver(actorID string, message Message) {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients[actorID]))
	for client := range m.clients[actorID] {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		m.enqueue(client, message)
	}
}

// enqueue drops the message when the client is not keeping up.
func (m *Manager) enqueue(client *Client, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		m.log.Function("enqueue").Er("failed to marshal message", err)
		return
	}

	select {
	case client.send <- payload:
	default:
		m.log.Function("enqueue").Warn("client send buffer full, dropping message",
			"clientID", client.ID, "type", message.Type)
	}
}

func (m *Manager) writePump(client *Client, done <-chan struct{}) {
	log := m.log.Function("writePump")
	for {
		select {
		case <-done:
			return
		case payload := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug("failed to write message", "clientID", client.ID, "error", err)
				return
			}
		}
	}
}

func (m *Manager) register(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clients[client.ActorID] == nil {
		m.clients[client.ActorID] = make(map[*Client]struct{})
	}
	m.clients[client.ActorID][client] = struct{}{}
	m.log.Function("register").Debug("client connected", "actorID", client.ActorID, "clientID", client.ID)
}

func (m *Manager) unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clients[client.ActorID], client)
	if len(m.clients[client.ActorID]) == 0 {
		delete(m.clients, client.ActorID)
	}
}

func (m *Manager) ClientCount(actorID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[actorID])
}
