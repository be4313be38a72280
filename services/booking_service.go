package services

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/database"
	"github.com/anjiri1684/study_space/events"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/obs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type BookingConfig struct {
	HoldWindow     time.Duration
	PriceTolerance float64
	Currency       string
}

type BookingService struct {
	db     *gorm.DB
	log    *logrus.Logger
	events *events.Dispatcher
	cfg    BookingConfig
	now    func() time.Time
}

func NewBookingService(db *gorm.DB, log *logrus.Logger, dispatcher *events.Dispatcher, cfg BookingConfig) *BookingService {
	return &BookingService{db: db, log: log, events: dispatcher, cfg: cfg, now: time.Now}
}

// SetClock replaces the time source. Tests use it to move across hold windows.
func (s *BookingService) SetClock(now func() time.Time) { s.now = now }

func (s *BookingService) clock() time.Time { return s.now().UTC() }

type AvailabilityQuery struct {
	UnitType models.UnitType
	UnitID   uuid.UUID
	Start    time.Time
	End      *time.Time
	Duration models.Duration
	Count    int
}

type AvailabilityResult struct {
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	UnitID    uuid.UUID `json:"inventory_unit_id"`
}

// CheckAvailability is read-only: expired holds are ignored, not expired.
func (s *BookingService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*AvailabilityResult, error) {
	if q.Duration == "" && q.End == nil {
		q.Duration, q.Count = models.DurationDaily, 1
	}
	var r DateRange
	var err error
	if q.Duration == "" {
		// a bare end date is treated as a daily booking spanning the range
		if q.End.Before(q.Start) {
			return nil, apperror.Validation("end_date must not be before start_date")
		}
		r = DateRange{Start: truncateDay(q.Start), End: truncateDay(*q.End)}
		q.Duration, q.Count = models.DurationDaily, r.Days()
	} else if r, err = ResolveRange(q.Start, q.End, q.Duration, q.Count); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	u, err := loadUnit(db, q.UnitType, q.UnitID, false)
	if err != nil {
		return nil, err
	}

	res := &AvailabilityResult{
		Available: true,
		StartDate: r.Start.Format(dateLayout),
		EndDate:   r.End.Format(dateLayout),
		Price:     Quote(u.Rates, q.Duration, q.Count),
		Currency:  s.cfg.Currency,
		UnitID:    u.ID,
	}
	if err := u.acceptsBookings(); err != nil {
		res.Available, res.Reason = false, err.Error()
		return res, nil
	}
	if u.flagBlocks(r) {
		res.Available, res.Reason = false, "unit is occupied"
		return res, nil
	}
	overlap, err := hasOverlap(db, u.Type, u.ID, r, s.clock(), uuid.Nil)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if overlap {
		res.Available, res.Reason = false, "dates overlap an existing booking"
	}
	return res, nil
}

type CreateBookingInput struct {
	UnitType      models.UnitType
	UnitID        uuid.UUID
	Start         time.Time
	End           *time.Time
	Duration      models.Duration
	Count         int
	TotalPrice    float64
	PaymentMethod string
}

// CreateBooking places a pending hold on the unit. The unit row lock makes
// check-and-insert atomic per unit; the inventory flag is left alone until
// payment completes.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, in CreateBookingInput) (*models.Booking, error) {
	ctx, span := obs.Tracer().Start(ctx, "booking.create")
	defer span.End()
	span.SetAttributes(attribute.String("unit.type", string(in.UnitType)), attribute.String("unit.id", in.UnitID.String()))

	if actor.UserID == uuid.Nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	r, err := ResolveRange(in.Start, in.End, in.Duration, in.Count)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if r.Start.Before(truncateDay(now)) {
		return nil, apperror.Validation("start_date must not be in the past")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "online"
	}

	var booking models.Booking
	var expired []models.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUnit(tx, in.UnitType, in.UnitID, true)
		if err != nil {
			return err
		}
		if err := u.acceptsBookings(); err != nil {
			return err
		}
		if u.flagBlocks(r) {
			return apperror.ErrSlotUnavailable
		}

		if expired, err = expireHolds(tx, now, forUnit(u.Type, u.ID)); err != nil {
			return err
		}
		overlap, err := hasOverlap(tx, u.Type, u.ID, r, now, uuid.Nil)
		if err != nil {
			return err
		}
		if overlap {
			return apperror.ErrSlotUnavailable
		}

		total := Quote(u.Rates, in.Duration, in.Count)
		if !WithinTolerance(in.TotalPrice, total, s.cfg.PriceTolerance) {
			return apperror.Validation("total_price does not match the current price for this booking")
		}

		hold := now.Add(s.cfg.HoldWindow)
		booking = models.Booking{
			UserID:          actor.UserID,
			PartnerID:       u.PartnerID,
			UnitType:        u.Type,
			InventoryUnitID: u.ID,
			StartDate:       r.Start,
			EndDate:         r.End,
			BookingDuration: in.Duration,
			DurationCount:   in.Count,
			TotalPrice:      total,
			Currency:        s.cfg.Currency,
			PaymentStatus:   models.StatusPending,
			PaymentMethod:   in.PaymentMethod,
			HoldExpiresAt:   &hold,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.First(&booking.User, "id = ?", actor.UserID).Error
	})
	if err != nil {
		span.RecordError(err)
		return nil, s.mapWriteError(err)
	}

	for i := range expired {
		s.events.Dispatch(ctx, events.FromBooking(events.BookingFailed, &expired[i], now))
	}
	s.events.Dispatch(ctx, events.FromBooking(events.BookingCreated, &booking, now))
	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"unit":       booking.InventoryUnitID,
		"start":      r.Start.Format(dateLayout),
		"end":        r.End.Format(dateLayout),
	}).Info("✅ Booking held pending payment")
	return &booking, nil
}

func (s *BookingService) mapWriteError(err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case database.IsOverlapViolation(err):
		return apperror.ErrSlotUnavailable
	default:
		s.log.WithError(err).Error("🔥 Booking write failed")
		return apperror.Internal(err)
	}
}

// GetBooking returns a booking visible to actor, expiring its hold first if
// it ran out.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	db := s.db.WithContext(ctx)
	var b models.Booking
	if err := db.Preload("User").First(&b, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "booking not found")
	}
	if err := authorizeBookingRead(db, actor, &b); err != nil {
		return nil, err
	}

	now := s.clock()
	if b.PaymentStatus == models.StatusPending && !b.HoldActive(now) {
		expired, err := expireHolds(db, now, func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", b.ID) })
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if len(expired) == 0 {
			// something else moved it first; report what is stored
			var current models.Booking
			if err := db.Preload("User").First(&current, "id = ?", id).Error; err != nil {
				return nil, notFoundOr(err, "booking not found")
			}
			return &current, nil
		}
		b.PaymentStatus, b.FailureReason = expired[0].PaymentStatus, expired[0].FailureReason
		s.events.Dispatch(ctx, events.FromBooking(events.BookingFailed, &expired[0], now))
	}
	return &b, nil
}

func authorizeBookingRead(db *gorm.DB, actor Actor, b *models.Booking) error {
	switch {
	case actor.IsAdmin(), b.UserID == actor.UserID:
		return nil
	case actor.IsVendor():
		partnerID, err := partnerIDForUser(db, actor.UserID)
		if err != nil {
			return err
		}
		if partnerID == b.PartnerID {
			return nil
		}
	}
	return apperror.Forbidden("you do not have access to this booking")
}

type BookingFilter struct {
	Status   models.PaymentStatus
	UnitType models.UnitType
	Page     int
	PageSize int
}

type BookingPage struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListBookings scopes by role: students see their own bookings, vendors those
// of their partner account, admins everything.
func (s *BookingService) ListBookings(ctx context.Context, actor Actor, f BookingFilter) (*BookingPage, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Booking{})
	switch {
	case actor.IsAdmin():
	case actor.IsVendor():
		partnerID, err := partnerIDForUser(db, actor.UserID)
		if err != nil {
			return nil, err
		}
		q = q.Where("partner_id = ?", partnerID)
	default:
		q = q.Where("user_id = ?", actor.UserID)
	}
	if f.Status != "" {
		q = q.Where("payment_status = ?", f.Status)
	}
	if f.UnitType != "" {
		q = q.Where("unit_type = ?", f.UnitType)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	q = q.Session(&gorm.Session{})
	page := &BookingPage{Page: f.Page, PageSize: f.PageSize}
	if err := q.Count(&page.Total).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&page.Bookings).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return page, nil
}

// CancelBooking is open to the booking owner and admins. Cancelling a paid
// booking frees the unit and flags the event as refund due.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	now := s.clock()
	var b models.Booking
	var wasCompleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&b, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "booking not found")
		}
		if !actor.IsAdmin() && b.UserID != actor.UserID {
			return apperror.Forbidden("only the booking owner or an admin can cancel")
		}
		if _, err := loadUnit(tx, b.UnitType, b.InventoryUnitID, true); err != nil {
			return err
		}
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		if !b.PaymentStatus.CanTransitionTo(models.StatusCancelled) {
			return apperror.Terminal("a " + string(b.PaymentStatus) + " booking cannot be cancelled")
		}
		wasCompleted = b.PaymentStatus == models.StatusCompleted

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND payment_status = ?", b.ID, b.PaymentStatus).
			Updates(map[string]interface{}{
				"payment_status":      models.StatusCancelled,
				"cancelled_at":        now,
				"cancellation_reason": reason,
				"updated_at":          now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Terminal("booking changed state, reload and retry")
		}
		b.PaymentStatus, b.CancelledAt, b.CancellationReason = models.StatusCancelled, &now, &reason

		// the projection only ever reflects bookings covering today
		if wasCompleted && rangeOf(&b).Contains(now) {
			return refreshAvailability(tx, b.UnitType, b.InventoryUnitID, now)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	evt := events.FromBooking(events.BookingCancelled, &b, now)
	evt.RefundDue = wasCompleted
	s.events.Dispatch(ctx, evt)
	return &b, nil
}

// ExpireStaleHolds is the sweep counterpart of the lazy expiry done on read
// and on create.
func (s *BookingService) ExpireStaleHolds(ctx context.Context) (int, error) {
	now := s.clock()
	var expired []models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		expired, err = expireHolds(tx, now, nil)
		return err
	})
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.events.Dispatch(ctx, events.FromBooking(events.BookingFailed, &expired[i], now))
	}
	return len(expired), nil
}

// RefreshAvailability recomputes the projection for every unit that has a
// completed booking touching yesterday or today, plus units still flagged.
func (s *BookingService) RefreshAvailability(ctx context.Context) (int, error) {
	now := s.clock()
	today := truncateDay(now)
	yesterday := today.AddDate(0, 0, -1)

	type unitKey struct {
		UnitType        models.UnitType
		InventoryUnitID uuid.UUID
	}
	db := s.db.WithContext(ctx)
	var keys []unitKey
	err := db.Model(&models.Booking{}).
		Distinct("unit_type", "inventory_unit_id").
		Where("payment_status = ?", models.StatusCompleted).
		Where("start_date <= ? AND end_date >= ?", today, yesterday).
		Scan(&keys).Error
	if err != nil {
		return 0, err
	}
	for _, t := range []models.UnitType{models.UnitSeat, models.UnitBed} {
		var ids []uuid.UUID
		if err := db.Table(unitTable(t)).Where("is_available = ?", false).Pluck("id", &ids).Error; err != nil {
			return 0, err
		}
		for _, id := range ids {
			keys = append(keys, unitKey{UnitType: t, InventoryUnitID: id})
		}
	}

	seen := make(map[unitKey]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		err := db.Transaction(func(tx *gorm.DB) error {
			if _, err := loadUnit(tx, k.UnitType, k.InventoryUnitID, true); err != nil {
				return err
			}
			return refreshAvailability(tx, k.UnitType, k.InventoryUnitID, now)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(seen), nil
}

func partnerIDForUser(db *gorm.DB, userID uuid.UUID) (uuid.UUID, error) {
	var p models.Partner
	if err := db.Select("id").First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperror.Forbidden("no partner account for this user")
		}
		return uuid.Nil, apperror.Internal(err)
	}
	return p.ID, nil
}
