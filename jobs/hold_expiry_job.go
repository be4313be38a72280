package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// BookingSweeper is the part of the booking service the scheduled jobs drive.
type BookingSweeper interface {
	ExpireStaleHolds(ctx context.Context) (int, error)
	RefreshAvailability(ctx context.Context) (int, error)
}

const jobTimeout = 2 * time.Minute

// ExpireStaleHolds fails pending bookings whose payment hold ran out, so the
// units they blocked are released even when nobody reads them.
func ExpireStaleHolds(s BookingSweeper, log *logrus.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := s.ExpireStaleHolds(ctx)
		if err != nil {
			log.WithError(err).Error("🔥 Error expiring stale booking holds")
			return
		}
		if n == 0 {
			log.Debug("No stale booking holds found.")
			return
		}
		log.WithField("count", n).Info("Expired stale booking hold(s)")
	}
}
