package services

import (
	"math"

	"github.com/anjiri1684/study_space/models"
)

// Rates are the per-period prices of one seat or bed. Monthly is mandatory;
// weekly and daily fall back to a pro-rata share of the monthly price.
type Rates struct {
	Monthly float64
	Weekly  *float64
	Daily   *float64
}

func (r Rates) PerPeriod(d models.Duration) float64 {
	switch d {
	case models.DurationDaily:
		if r.Daily != nil && *r.Daily > 0 {
			return *r.Daily
		}
		return r.Monthly / 30
	case models.DurationWeekly:
		if r.Weekly != nil && *r.Weekly > 0 {
			return *r.Weekly
		}
		return r.Monthly * 7 / 30
	default:
		return r.Monthly
	}
}

func Quote(r Rates, d models.Duration, count int) float64 {
	return round2(r.PerPeriod(d) * float64(count))
}

func WithinTolerance(client, server, tolerance float64) bool {
	return math.Abs(client-server) <= tolerance+1e-9
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
