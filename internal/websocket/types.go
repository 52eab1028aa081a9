package websocket

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeCorrection is sent after every checked text
	EventTypeCorrection EventType = "correction"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// CorrectionEvent summarises one correction. The text itself is never broadcast.
type CorrectionEvent struct {
	RequestID    string   `json:"request_id"`
	Source       string   `json:"source"`
	Tier         int      `json:"tier"`
	Band         string   `json:"band"`
	Score        int      `json:"score"`
	FindingCount int      `json:"finding_count"`
	Categories   []string `json:"categories"`
	TextLength   int      `json:"text_length"`
	Cached       bool     `json:"cached"`
	DurationMS   float64  `json:"duration_ms"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status             string `json:"status"`
	Uptime             string `json:"uptime"`
	TotalCorrections   int64  `json:"total_corrections"`
	ActiveRules        int    `json:"active_rules"`
	CatalogFingerprint string `json:"catalog_fingerprint"`
	ConnectedClients   int    `json:"connected_clients"`
	Message            string `json:"message,omitempty"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType   `json:"events"`
	Filter *EventFilter `json:"filter,omitempty"`
}

// EventFilter narrows correction events
type EventFilter struct {
	Bands      []string `json:"bands,omitempty"`
	Categories []string `json:"categories,omitempty"`
	MaxScore   *int     `json:"max_score,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Matches reports whether a correction event passes the filter
func (f *EventFilter) Matches(event CorrectionEvent) bool {
	if f == nil {
		return true
	}
	if len(f.Bands) > 0 && !slices.Contains(f.Bands, event.Band) {
		return false
	}
	if f.MaxScore != nil && event.Score > *f.MaxScore {
		return false
	}
	if f.Source != "" && f.Source != event.Source {
		return false
	}
	if len(f.Categories) > 0 {
		for _, c := range event.Categories {
			if slices.Contains(f.Categories, c) {
				return true
			}
		}
		return false
	}
	return true
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan Event
	ConnectedAt time.Time
	IP          string
	UserAgent   string

	mu           sync.Mutex
	subscription *SubscriptionRequest
	lastPing     time.Time
	closed       bool
}

func (c *Client) subscribe(sub *SubscriptionRequest) {
	c.mu.Lock()
	c.subscription = sub
	c.mu.Unlock()
}

func (c *Client) wants(event Event) bool {
	c.mu.Lock()
	sub := c.subscription
	c.mu.Unlock()

	if sub == nil {
		return true
	}
	if !slices.Contains(sub.Events, event.Type) {
		return false
	}
	if correction, ok := event.Data.(CorrectionEvent); ok {
		return sub.Filter.Matches(correction)
	}
	return true
}

// trySend queues an event without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *Client) trySend(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}
