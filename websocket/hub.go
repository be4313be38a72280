package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/study_space/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

// StatusUpdate is what a connected student receives when one of their
// bookings changes state.
type StatusUpdate struct {
	Type          string    `json:"type"`
	BookingID     uuid.UUID `json:"booking_id"`
	PaymentStatus string    `json:"payment_status"`
	Reason        string    `json:"reason,omitempty"`
}

type delivery struct {
	userID uuid.UUID
	update StatusUpdate
}

// Hub keeps one live connection per user and pushes booking status updates
// to it. All map writes happen on the Run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}

	mu      sync.RWMutex
	clients map[uuid.UUID]Conn
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]Conn),
		log:        log,
	}
}

// Run owns the client map until ctx ends. After it returns Join refuses new
// clients and Leave returns at once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.log.WithField("user_id", client.UserID).Debug("Client registered")
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client.Conn {
				_ = old.Close()
			}
			h.clients[client.UserID] = client.Conn
			h.mu.Unlock()
		case client := <-h.unregister:
			h.log.WithField("user_id", client.UserID).Debug("Client unregistered")
			h.mu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()
		case d := <-h.broadcast:
			h.mu.RLock()
			conn, ok := h.clients[d.userID]
			h.mu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(d.update); err != nil {
				h.log.WithError(err).WithField("user_id", d.userID).Warn("Error sending status to client")
				_ = conn.Close()
				h.mu.Lock()
				if h.clients[d.userID] == conn {
					delete(h.clients, d.userID)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Join hands c to the hub. It reports false when the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// OnBookingEvent queues a push to the booking owner. A full queue drops the
// update; the client still sees the state on its next poll.
func (h *Hub) OnBookingEvent(_ context.Context, evt events.BookingEvent) {
	d := delivery{
		userID: evt.UserID,
		update: StatusUpdate{
			Type:          "booking.status",
			BookingID:     evt.BookingID,
			PaymentStatus: evt.Status,
			Reason:        evt.Reason,
		},
	}
	select {
	case h.broadcast <- d:
	default:
		h.log.WithField("booking_id", evt.BookingID).Warn("websocket queue full, dropping status update")
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
