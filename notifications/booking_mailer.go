package notifications

import (
	"context"
	"fmt"

	"github.com/anjiri1684/study_space/events"
	"github.com/sirupsen/logrus"
)

// BookingMailer e-mails the student when a booking is confirmed, fails or is
// cancelled. Created bookings are not mailed: the client is still on the
// payment screen.
type BookingMailer struct {
	mailer Mailer
	log    *logrus.Logger
	async  bool
}

func NewBookingMailer(m Mailer, log *logrus.Logger) *BookingMailer {
	return &BookingMailer{mailer: m, log: log, async: true}
}

func (b *BookingMailer) OnBookingEvent(_ context.Context, evt events.BookingEvent) {
	if b.mailer == nil || evt.UserEmail == "" {
		return
	}
	subject, body, ok := renderBookingEmail(evt)
	if !ok {
		return
	}

	send := func() {
		if err := b.mailer.SendEmail(evt.UserName, evt.UserEmail, subject, body); err != nil {
			b.log.WithError(err).WithField("booking_id", evt.BookingID).Error("🔥 Failed to send booking email")
			return
		}
		b.log.WithField("booking_id", evt.BookingID).Info("✅ Booking email sent")
	}
	if b.async {
		go send()
		return
	}
	send()
}

func renderBookingEmail(evt events.BookingEvent) (string, string, bool) {
	period := fmt.Sprintf("%s to %s", evt.StartDate, evt.EndDate)
	switch evt.Type {
	case events.BookingCompleted:
		return "Your Booking is Confirmed!",
			fmt.Sprintf("<h1>Booking Confirmed</h1><p>Your %s is reserved from %s. Amount paid: %.2f %s.</p>", evt.UnitType, period, evt.TotalPrice, evt.Currency),
			true
	case events.BookingFailed:
		return "Payment not completed",
			fmt.Sprintf("<h1>Booking Not Confirmed</h1><p>We could not confirm your %s for %s. No seat has been reserved; please try booking again.</p>", evt.UnitType, period),
			true
	case events.BookingCancelled:
		msg := fmt.Sprintf("<h1>Booking Cancelled</h1><p>Your %s booking for %s has been cancelled.</p>", evt.UnitType, period)
		if evt.RefundDue {
			msg += "<p>A refund will be processed to your original payment method.</p>"
		}
		return "Your Booking was Cancelled", msg, true
	}
	return "", "", false
}
