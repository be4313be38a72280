package services

import (
	"fmt"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/models"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar days at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func rangeOf(b *models.Booking) DateRange {
	return DateRange{Start: truncateDay(b.StartDate), End: truncateDay(b.EndDate)}
}

func (r DateRange) Contains(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Validation("dates must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// EndFor returns the last day covered by count periods starting at start.
func EndFor(start time.Time, d models.Duration, count int) time.Time {
	start = truncateDay(start)
	switch d {
	case models.DurationDaily:
		return start.AddDate(0, 0, count-1)
	case models.DurationWeekly:
		return start.AddDate(0, 0, 7*count-1)
	default:
		return start.AddDate(0, count, -1)
	}
}

// maxPeriods caps a single booking at roughly one year.
var maxPeriods = map[models.Duration]int{
	models.DurationDaily:   366,
	models.DurationWeekly:  52,
	models.DurationMonthly: 12,
}

// ResolveRange validates a booking request's dates. When end is given it
// must equal the end implied by duration and count.
func ResolveRange(start time.Time, end *time.Time, d models.Duration, count int) (DateRange, error) {
	if !d.Valid() {
		return DateRange{}, apperror.Validation("booking_duration must be daily, weekly or monthly")
	}
	if count < 1 {
		return DateRange{}, apperror.Validation("duration_count must be at least 1")
	}
	if limit := maxPeriods[d]; count > limit {
		return DateRange{}, apperror.Validation(fmt.Sprintf("duration_count must be at most %d for %s bookings", limit, d))
	}
	r := DateRange{Start: truncateDay(start), End: EndFor(start, d, count)}
	if end != nil {
		e := truncateDay(*end)
		if e.Before(r.Start) {
			return DateRange{}, apperror.Validation("end_date must not be before start_date")
		}
		if !e.Equal(r.End) {
			return DateRange{}, apperror.Validation("end_date does not match booking_duration and duration_count, expected " + r.End.Format(dateLayout))
		}
	}
	return r, nil
}
