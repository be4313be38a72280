package services

import (
	"time"

	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const reasonHoldExpired = "hold_expired"

// liveBookings selects bookings that still occupy their range at now:
// completed ones, and pending ones whose hold has not run out.
func liveBookings(tx *gorm.DB, now time.Time) *gorm.DB {
	return tx.Model(&models.Booking{}).
		Where("payment_status = ? OR (payment_status = ? AND hold_expires_at > ?)",
			models.StatusCompleted, models.StatusPending, now)
}

func hasOverlap(tx *gorm.DB, t models.UnitType, unitID uuid.UUID, r DateRange, now time.Time, exclude uuid.UUID) (bool, error) {
	q := liveBookings(tx, now).
		Where("unit_type = ? AND inventory_unit_id = ?", t, unitID).
		Where("start_date <= ? AND end_date >= ?", r.End, r.Start)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// expireHolds moves pending bookings whose hold ran out to failed and returns
// only the rows it actually flipped. scope may narrow the candidates. Each
// update re-checks the status, so a booking a concurrent verify completed
// after the select is left alone and not reported.
func expireHolds(tx *gorm.DB, now time.Time, scope func(*gorm.DB) *gorm.DB) ([]models.Booking, error) {
	q := tx.Preload("User").
		Where("payment_status = ? AND hold_expires_at <= ?", models.StatusPending, now)
	if scope != nil {
		q = scope(q)
	}
	var stale []models.Booking
	if err := q.Find(&stale).Error; err != nil {
		return nil, err
	}

	reason := reasonHoldExpired
	expired := stale[:0]
	for _, b := range stale {
		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ?", b.ID, models.StatusPending).
			Updates(map[string]interface{}{
				"payment_status": models.StatusFailed,
				"failure_reason": reason,
				"updated_at":     now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected != 1 {
			continue
		}
		b.PaymentStatus = models.StatusFailed
		b.FailureReason = &reason
		expired = append(expired, b)
	}
	return expired, nil
}

func forUnit(t models.UnitType, unitID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("unit_type = ? AND inventory_unit_id = ?", t, unitID)
	}
}

// refreshAvailability recomputes the cached isAvailable/unavailableUntil pair
// of one unit from the completed bookings covering today. It is the only
// writer of those columns.
func refreshAvailability(tx *gorm.DB, t models.UnitType, unitID uuid.UUID, now time.Time) error {
	today := truncateDay(now)
	var covering []models.Booking
	err := tx.Select("id", "end_date").
		Where("unit_type = ? AND inventory_unit_id = ? AND payment_status = ?", t, unitID, models.StatusCompleted).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Order("end_date DESC").Limit(1).
		Find(&covering).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"is_available": true, "unavailable_until": nil, "updated_at": now}
	if len(covering) > 0 {
		updates["is_available"] = false
		updates["unavailable_until"] = covering[0].EndDate
	}
	return tx.Table(unitTable(t)).Where("id = ?", unitID).Updates(updates).Error
}
