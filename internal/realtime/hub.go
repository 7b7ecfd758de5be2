package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Event names pushed to connected clients.
const (
	EventRequestCreated  = "request_created"
	EventRequestStatus   = "request_status"
	EventRequestAssigned = "request_assigned"
	EventMessagePosted   = "message_posted"
)

// Hub maintains organization_id -> set of connections and broadcasts tenant
// events. Uses Redis pub/sub for horizontal scaling: events are published to
// the organization channel and each instance's subscriber delivers them to
// its local clients.
type Hub struct {
	// organizationID -> map[clientID]*Client
	orgs     map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per organization
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to organization channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		orgs:     make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to its organization room. Starts the Redis
// subscription for this organization if it is the first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.orgs[c.OrgID] == nil {
		h.orgs[c.OrgID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeOrg(c.OrgID, func(event string, payload []byte) {
				h.broadcastLocal(c.OrgID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.OrgID] = cancel
			}
		}
	}
	h.orgs[c.OrgID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined organization room",
		zap.String("client_id", c.ID), zap.String("organization_id", c.OrgID.String()))
}

// Unregister removes a client. Cancels the Redis subscription when the last
// client of an organization leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.orgs[c.OrgID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.orgs, c.OrgID)
			if cancel, ok := h.subs[c.OrgID]; ok {
				cancel()
				delete(h.subs, c.OrgID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left organization room",
		zap.String("client_id", c.ID), zap.String("organization_id", c.OrgID.String()))
}

// broadcastLocal sends a message to all clients of an organization on this
// instance only.
func (h *Hub) broadcastLocal(orgID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.orgs[orgID]))
	for _, c := range h.orgs[orgID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToOrg publishes to Redis only; the organization's subscribers on
// every instance (this one included) perform the local broadcast, so clients
// receive each event exactly once. Falls back to a direct local broadcast
// when Redis is not configured. Never blocks the caller's request path.
func (h *Hub) BroadcastToOrg(orgID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishOrgEvent(orgID, event, data)
		return
	}
	h.broadcastLocal(orgID, event, json.RawMessage(data))
}

// ConnectedCount returns the number of connected clients for an organization.
func (h *Hub) ConnectedCount(orgID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orgs[orgID])
}
