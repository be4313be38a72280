package jobs

import (
	"fmt"

	config "github.com/anjiri1684/study_space/configs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Schedule registers the booking sweeps on c. The caller starts and stops c.
func Schedule(c *cron.Cron, s BookingSweeper, cfg config.Booking, log *logrus.Logger) error {
	if _, err := c.AddFunc(cfg.HoldSweepSpec, ExpireStaleHolds(s, log)); err != nil {
		return fmt.Errorf("schedule hold expiry %q: %w", cfg.HoldSweepSpec, err)
	}
	if _, err := c.AddFunc(cfg.AvailabilitySweepSpec, RefreshAvailability(s, log)); err != nil {
		return fmt.Errorf("schedule availability refresh %q: %w", cfg.AvailabilitySweepSpec, err)
	}
	return nil
}
