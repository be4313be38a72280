package jobs

import (
	"context"
	"errors"
	"testing"

	config "github.com/anjiri1684/study_space/configs"
	"github.com/anjiri1684/study_space/logger"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	expired, refreshed int
	err                error
}

func (f *fakeSweeper) ExpireStaleHolds(ctx context.Context) (int, error) {
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("job context has no deadline")
	}
	f.expired++
	return 3, f.err
}

func (f *fakeSweeper) RefreshAvailability(context.Context) (int, error) {
	f.refreshed++
	return 1, f.err
}

func TestJobsCallTheSweeper(t *testing.T) {
	s := &fakeSweeper{}
	log := logger.Discard()

	ExpireStaleHolds(s, log)()
	RefreshAvailability(s, log)()
	assert.Equal(t, 1, s.expired)
	assert.Equal(t, 1, s.refreshed)

	s.err = errors.New("db down")
	assert.NotPanics(t, ExpireStaleHolds(s, log))
	assert.NotPanics(t, RefreshAvailability(s, log))
}

func TestScheduleRegistersBothSweeps(t *testing.T) {
	c := cron.New()
	err := Schedule(c, &fakeSweeper{}, config.Booking{HoldSweepSpec: "@every 1m", AvailabilitySweepSpec: "@hourly"}, logger.Discard())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	c := cron.New()
	err := Schedule(c, &fakeSweeper{}, config.Booking{HoldSweepSpec: "every minute", AvailabilitySweepSpec: "@hourly"}, logger.Discard())
	assert.Error(t, err)
}
