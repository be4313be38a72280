package jobs

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RefreshAvailability recomputes the is_available flag of units whose paid
// bookings start or end around today.
func RefreshAvailability(s BookingSweeper, log *logrus.Logger) func() {
	return func() {
		log.Info("Running job: RefreshAvailability...")
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		n, err := s.RefreshAvailability(ctx)
		if err != nil {
			log.WithError(err).Error("🔥 Error refreshing unit availability")
			return
		}
		log.WithField("units", n).Info("Unit availability refreshed")
	}
}
