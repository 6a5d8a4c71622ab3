// Package feed streams platform activity to WebSocket subscribers: new
// classifications, achievement claims and NFT movements. Every
// subscriber sees the same stream; Redis Pub/Sub fans events out
// across server instances.
package feed

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventClassification   EventType = "classification"
	EventAchievementClaim EventType = "achievement_claim"
	EventNFTClaim         EventType = "nft_claim"
)

const feedChannel = "feed:events"

var (
	feedConnectionsGauge   = expvar.NewInt("feed_connections")
	feedEventsSentTotal    = expvar.NewInt("feed_events_sent_total")
	feedEventsDroppedTotal = expvar.NewInt("feed_events_dropped_total")
)

// Event is one feed entry as sent to subscribers.
type Event struct {
	Type      EventType   `json:"type"`
	Wallet    string      `json:"wallet_address"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type envelope struct {
	SenderInstanceID string          `json:"sender_instance_id"`
	Payload          json.RawMessage `json:"payload"`
}

// Connection is one WebSocket subscriber.
type Connection struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans events out to local subscribers and, when Redis is
// available, to every other server instance.
type Hub struct {
	connections map[*Connection]bool
	redis       *redis.Client // nil if Redis disabled
	pubsub      *redis.PubSub
	mu          sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx        context.Context
	cancel     context.CancelFunc
	instanceID string
}

func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		connections: make(map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}
	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, feedChannel)
	}
	return h
}

// Run starts the hub loop. Call in a goroutine.
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			feedConnectionsGauge.Add(1)
			log.Debug().Msg("feed subscriber connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
				feedConnectionsGauge.Add(-1)
			}
			h.mu.Unlock()
			log.Debug().Msg("feed subscriber disconnected")
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Broadcast publishes an event to all subscribers on all instances.
// With Redis down or disabled, local subscribers still get it.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal feed event")
		return
	}

	if h.redis != nil {
		wrapped, err := json.Marshal(envelope{SenderInstanceID: h.instanceID, Payload: data})
		if err == nil {
			if err := h.redis.Publish(h.ctx, feedChannel, wrapped).Err(); err == nil {
				h.broadcastLocal(data)
				return
			}
			log.Error().Msg("feed redis publish failed, falling back to local broadcast")
		}
	}
	h.broadcastLocal(data)
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			// own events were already delivered locally at publish time
			if env.SenderInstanceID == h.instanceID {
				continue
			}
			h.broadcastLocal(env.Payload)
		}
	}
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		select {
		case conn.Send <- data:
			feedEventsSentTotal.Add(1)
		default:
			feedEventsDroppedTotal.Add(1)
			log.Warn().Msg("feed send buffer full, event dropped")
		}
	}
}
