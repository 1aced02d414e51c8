// Package live is a supplemental real-time notification channel:
// subscribers watching a region get pushed a message whenever a ranking is
// regenerated, a merge is applied or undone, a pending tournament's alias
// mapping changes, or a pending tournament is finalized, instead of having
// to poll GET /<region>/rankings. Adapted from a per-contest int64 fan-out
// connection manager into per-region string fan-out of domain events
// rather than leaderboard deltas.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"bracketrank/pkg/logger"

	"github.com/gorilla/websocket"
)

// EventKind tags what changed.
type EventKind string

const (
	EventRankingGenerated      EventKind = "ranking_generated"
	EventAliasMappingChanged   EventKind = "alias_mapping_changed"
	EventTournamentFinalized   EventKind = "tournament_finalized"
	EventMergeApplied          EventKind = "merge_applied"
	EventMergeUndone           EventKind = "merge_undone"
)

// Event is broadcast to every subscriber of Region.
type Event struct {
	Kind      EventKind   `json:"kind"`
	Region    string      `json:"region"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Subscriber is one open connection watching a single region.
type Subscriber struct {
	ID     string
	Region string
	Conn   *websocket.Conn
	Send   chan Event

	active   bool
	lastPing time.Time
}

// Manager fans Events out to every Subscriber watching the event's region.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	byRegion    map[string][]*Subscriber

	broadcast  chan Event
	register   chan *Subscriber
	unregister chan *Subscriber
}

func NewManager() *Manager {
	return &Manager{
		subscribers: make(map[string]*Subscriber),
		byRegion:    make(map[string][]*Subscriber),
		broadcast:   make(chan Event, 16),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
	}
}

func (m *Manager) Start() {
	go m.run()
}

func (m *Manager) run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case sub := <-m.register:
			m.add(sub)
		case sub := <-m.unregister:
			m.remove(sub)
		case ev := <-m.broadcast:
			m.deliver(ev)
		case <-ticker.C:
			m.sweepStale()
		}
	}
}

func (m *Manager) Register(sub *Subscriber)   { m.register <- sub }
func (m *Manager) Unregister(sub *Subscriber) { m.unregister <- sub }

// Publish notifies every subscriber watching region.
func (m *Manager) Publish(kind EventKind, region string, payload interface{}) {
	m.broadcast <- Event{Kind: kind, Region: region, Payload: payload, Timestamp: time.Now()}
}

func (m *Manager) add(sub *Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub.active = true
	sub.lastPing = time.Now()
	m.subscribers[sub.ID] = sub
	m.byRegion[sub.Region] = append(m.byRegion[sub.Region], sub)
	logger.Info("live subscriber registered", "id", sub.ID, "region", sub.Region)
}

func (m *Manager) remove(sub *Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subscribers, sub.ID)
	subs := m.byRegion[sub.Region]
	for i, s := range subs {
		if s.ID == sub.ID {
			m.byRegion[sub.Region] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(m.byRegion[sub.Region]) == 0 {
		delete(m.byRegion, sub.Region)
	}
	sub.active = false
	close(sub.Send)
}

func (m *Manager) deliver(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := m.byRegion[ev.Region]
	for _, sub := range subs {
		if !sub.active {
			continue
		}
		select {
		case sub.Send <- ev:
		default:
			go m.Unregister(sub)
		}
	}
}

func (m *Manager) sweepStale() {
	m.mu.Lock()
	cutoff := time.Now().Add(-2 * time.Minute)
	var stale []*Subscriber
	for _, sub := range m.subscribers {
		if sub.lastPing.Before(cutoff) {
			stale = append(stale, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range stale {
		m.Unregister(sub)
	}
}

func (m *Manager) Ping(subscriberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subscribers[subscriberID]; ok {
		sub.lastPing = time.Now()
	}
}

// WriteLoop drains sub.Send to its websocket connection until it closes.
func (sub *Subscriber) WriteLoop() {
	for ev := range sub.Send {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if err := sub.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
