package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ name, email, subject, body string }

type recordingMailer struct{ sent []sentMail }

func (r *recordingMailer) SendEmail(toName, toEmail, subject, html string) error {
	r.sent = append(r.sent, sentMail{toName, toEmail, subject, html})
	return nil
}

func TestBookingMailerSendsPerLifecycleEvent(t *testing.T) {
	rec := &recordingMailer{}
	m := NewBookingMailer(rec, logger.Discard())
	m.async = false

	base := events.BookingEvent{UserName: "Asha", UserEmail: "asha@example.com", UnitType: "seat", StartDate: "2025-01-01", EndDate: "2025-01-31"}
	for _, typ := range []string{events.BookingCreated, events.BookingCompleted, events.BookingFailed, events.BookingCancelled} {
		evt := base
		evt.Type = typ
		m.OnBookingEvent(context.Background(), evt)
	}

	require.Len(t, rec.sent, 3)
	assert.Equal(t, "Your Booking is Confirmed!", rec.sent[0].subject)
	assert.Equal(t, "Payment not completed", rec.sent[1].subject)
	assert.Contains(t, rec.sent[1].body, "No seat has been reserved")
	assert.Equal(t, "Your Booking was Cancelled", rec.sent[2].subject)
}

func TestBookingMailerMentionsRefund(t *testing.T) {
	rec := &recordingMailer{}
	m := NewBookingMailer(rec, logger.Discard())
	m.async = false

	m.OnBookingEvent(context.Background(), events.BookingEvent{Type: events.BookingCancelled, UserEmail: "a@b.c", RefundDue: true})

	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0].body, "refund")
}

func TestNilMailerIsSkipped(t *testing.T) {
	m := NewBookingMailer(nil, logger.Discard())
	assert.NotPanics(t, func() {
		m.OnBookingEvent(context.Background(), events.BookingEvent{Type: events.BookingCompleted, UserEmail: "a@b.c"})
	})
}

func TestBrevoServicePostsPayload(t *testing.T) {
	var payload brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewBrevoService("secret-key", "noreply@studyspace.in", "Study Space", logger.Discard())
	svc.URL = srv.URL

	require.NoError(t, svc.SendEmail("", "asha@example.com", "Hi", "<p>hi</p>"))
	assert.Equal(t, "asha", payload.To[0]["name"])
	assert.Equal(t, "Hi", payload.Subject)

	assert.Error(t, svc.SendEmail("x", "not-an-email", "Hi", ""))
}

func TestNewBrevoServiceRequiresConfig(t *testing.T) {
	assert.Nil(t, NewBrevoService("", "a@b.c", "n", logger.Discard()))
}
