package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// loopbackPubSub wires PublishOrgEvent straight into the subscribed handler,
// the way a single-instance deployment sees its own published events come
// back through Redis.
type loopbackPubSub struct {
	mu       sync.Mutex
	handlers map[uuid.UUID]func(event string, payload []byte)
}

func newLoopbackPubSub() *loopbackPubSub {
	return &loopbackPubSub{handlers: make(map[uuid.UUID]func(event string, payload []byte))}
}

func (l *loopbackPubSub) PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error {
	l.mu.Lock()
	h := l.handlers[orgID]
	l.mu.Unlock()
	if h != nil {
		h(event, payload)
	}
	return nil
}

func (l *loopbackPubSub) SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	l.mu.Lock()
	l.handlers[orgID] = handler
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.handlers, orgID)
		l.mu.Unlock()
	}, nil
}

func testClient(orgID uuid.UUID, id string) *Client {
	return &Client{ID: id, OrgID: orgID, send: make(chan WSMessage, 8)}
}

func TestBroadcastDeliversExactlyOnceThroughPubSub(t *testing.T) {
	ps := newLoopbackPubSub()
	hub := NewHub(zap.NewNop(), ps, ps)
	org := uuid.New()
	c := testClient(org, "c1")
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BroadcastToOrg(org, EventRequestStatus, map[string]string{"status": "approved"})

	select {
	case msg := <-c.send:
		assert.Equal(t, EventRequestStatus, msg.Event)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	select {
	case msg := <-c.send:
		t.Fatalf("event %q delivered twice", msg.Event)
	default:
	}
}

func TestBroadcastFallsBackToLocalWithoutRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	org := uuid.New()
	c := testClient(org, "c1")
	hub.Register(c)
	defer hub.Unregister(c)

	hub.BroadcastToOrg(org, EventMessagePosted, map[string]string{"content": "hi"})

	select {
	case msg := <-c.send:
		assert.Equal(t, EventMessagePosted, msg.Event)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBroadcastStaysInOrgRoom(t *testing.T) {
	ps := newLoopbackPubSub()
	hub := NewHub(zap.NewNop(), ps, ps)
	orgA, orgB := uuid.New(), uuid.New()
	a := testClient(orgA, "a")
	b := testClient(orgB, "b")
	hub.Register(a)
	hub.Register(b)
	defer hub.Unregister(a)
	defer hub.Unregister(b)

	hub.BroadcastToOrg(orgA, EventRequestCreated, map[string]string{"id": "x"})

	require.Eventually(t, func() bool { return len(a.send) == 1 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, b.send)
}

func TestBroadcastDuringConnectChurn(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	org := uuid.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c := testClient(org, fmt.Sprintf("c%d", i))
			hub.Register(c)
			hub.Unregister(c)
		}
	}()
	for i := 0; i < 500; i++ {
		hub.BroadcastToOrg(org, EventRequestStatus, map[string]int{"n": i})
	}
	<-done
	assert.Zero(t, hub.ConnectedCount(org))
}
