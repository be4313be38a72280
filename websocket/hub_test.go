package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written []interface{}
	closed  bool
	failing bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(logger.Discard())
	go h.Run(ctx)
	return h
}

func TestHubPushesStatusToBookingOwnerOnly(t *testing.T) {
	h := startHub(t)
	owner, other := uuid.New(), uuid.New()
	ownerConn, otherConn := &fakeConn{}, &fakeConn{}
	h.Join(&Client{UserID: owner, Conn: ownerConn})
	h.Join(&Client{UserID: other, Conn: otherConn})

	h.OnBookingEvent(context.Background(), events.BookingEvent{UserID: owner, BookingID: uuid.New(), Status: "completed"})

	require.Eventually(t, func() bool { return ownerConn.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, otherConn.count())
	update := ownerConn.written[0].(StatusUpdate)
	assert.Equal(t, "completed", update.PaymentStatus)
}

func TestHubDropsBrokenConnections(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	conn := &fakeConn{failing: true}
	h.Join(&Client{UserID: user, Conn: conn})

	h.OnBookingEvent(context.Background(), events.BookingEvent{UserID: user, Status: "failed"})

	require.Eventually(t, func() bool { return !h.Connected(user) }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.closed)
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	first, second := &fakeConn{}, &fakeConn{}
	h.Join(&Client{UserID: user, Conn: first})
	h.Join(&Client{UserID: user, Conn: second})
	h.Leave(&Client{UserID: user, Conn: first})

	require.Eventually(t, func() bool { return h.Connected(user) }, time.Second, 5*time.Millisecond)
	assert.True(t, first.closed)
}

func TestStoppedHubDoesNotBlockClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logger.Discard())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	conn := &fakeConn{}
	client := &Client{UserID: uuid.New(), Conn: conn}
	require.True(t, h.Join(client))
	cancel()
	<-stopped
	assert.True(t, conn.closed)

	done := make(chan struct{})
	go func() {
		h.Leave(client)
		assert.False(t, h.Join(&Client{UserID: uuid.New(), Conn: &fakeConn{}}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Join or Leave blocked on a stopped hub")
	}
}
