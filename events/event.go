package events

import (
	"context"
	"sync"
	"time"

	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	BookingCreated   = "created"
	BookingCompleted = "completed"
	BookingFailed    = "failed"
	BookingCancelled = "cancelled"
)

// BookingEvent is emitted after a booking lifecycle change has committed.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	PartnerID  uuid.UUID `json:"partner_id"`
	UnitType   string    `json:"booking_type"`
	UnitID     uuid.UUID `json:"inventory_unit_id"`
	Status     string    `json:"payment_status"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
	Currency   string    `json:"currency"`
	Reason     string    `json:"reason,omitempty"`
	RefundDue  bool      `json:"refund_due,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	UserName  string `json:"-"`
	UserEmail string `json:"-"`
}

func (e BookingEvent) RoutingKey() string { return "booking." + e.Type }

func FromBooking(typ string, b *models.Booking, at time.Time) BookingEvent {
	evt := BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		PartnerID:  b.PartnerID,
		UnitType:   string(b.UnitType),
		UnitID:     b.InventoryUnitID,
		Status:     string(b.PaymentStatus),
		StartDate:  b.StartDate.Format("2006-01-02"),
		EndDate:    b.EndDate.Format("2006-01-02"),
		TotalPrice: b.TotalPrice,
		Currency:   b.Currency,
		OccurredAt: at,
		UserName:   b.User.FullName,
		UserEmail:  b.User.Email,
	}
	if b.FailureReason != nil {
		evt.Reason = *b.FailureReason
	}
	if b.CancellationReason != nil {
		evt.Reason = *b.CancellationReason
	}
	return evt
}

// Listener reacts to committed booking events. Implementations must not
// block for long and own their error handling.
type Listener interface {
	OnBookingEvent(ctx context.Context, evt BookingEvent)
}

type Dispatcher struct {
	listeners []Listener
	log       *logrus.Logger
}

func NewDispatcher(log *logrus.Logger, listeners ...Listener) *Dispatcher {
	return &Dispatcher{listeners: listeners, log: log}
}

// Add registers another listener. Call it before the first Dispatch.
func (d *Dispatcher) Add(l Listener) {
	d.listeners = append(d.listeners, l)
}

func (d *Dispatcher) Dispatch(ctx context.Context, evt BookingEvent) {
	if d == nil {
		return
	}
	d.log.WithFields(logrus.Fields{
		"event":      evt.RoutingKey(),
		"booking_id": evt.BookingID,
		"status":     evt.Status,
	}).Info("booking event")
	for _, l := range d.listeners {
		l.OnBookingEvent(ctx, evt)
	}
}

// Recorder keeps every event it receives. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	Events []BookingEvent
}

func (r *Recorder) OnBookingEvent(_ context.Context, evt BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evt)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
