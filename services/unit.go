package services

import (
	"errors"
	"time"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unit is a seat or bed joined with the parent and partner state that decides
// whether it can be booked at all.
type unit struct {
	Type             models.UnitType
	ID               uuid.UUID
	PartnerID        uuid.UUID
	Rates            Rates
	IsActive         bool
	IsAvailable      bool
	UnavailableUntil *time.Time

	ParentActive        bool
	ParentBookingActive bool
	PartnerStatus       string
}

// loadUnit reads a unit and its parents. With lock set the unit row is taken
// FOR UPDATE, which serializes every booking write on that unit.
func loadUnit(tx *gorm.DB, t models.UnitType, id uuid.UUID, lock bool) (*unit, error) {
	q := tx
	if lock {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	u := &unit{Type: t, ID: id}
	switch t {
	case models.UnitSeat:
		var seat models.Seat
		if err := q.First(&seat, "id = ?", id).Error; err != nil {
			return nil, notFoundOr(err, "seat not found")
		}
		var cabin models.Cabin
		if err := tx.First(&cabin, "id = ?", seat.CabinID).Error; err != nil {
			return nil, notFoundOr(err, "cabin not found")
		}
		u.Rates = Rates{Monthly: seat.Price, Weekly: seat.WeeklyPrice, Daily: seat.DailyPrice}
		u.IsActive, u.IsAvailable, u.UnavailableUntil = seat.IsActive, seat.IsAvailable, seat.UnavailableUntil
		u.ParentActive, u.ParentBookingActive, u.PartnerID = cabin.IsActive, cabin.IsBookingActive, cabin.PartnerID
	case models.UnitBed:
		var bed models.HostelBed
		if err := q.First(&bed, "id = ?", id).Error; err != nil {
			return nil, notFoundOr(err, "bed not found")
		}
		var room models.HostelRoom
		if err := tx.First(&room, "id = ?", bed.RoomID).Error; err != nil {
			return nil, notFoundOr(err, "room not found")
		}
		var hostel models.Hostel
		if err := tx.First(&hostel, "id = ?", room.HostelID).Error; err != nil {
			return nil, notFoundOr(err, "hostel not found")
		}
		u.Rates = Rates{Monthly: bed.Price, Weekly: bed.WeeklyPrice, Daily: bed.DailyPrice}
		u.IsActive, u.IsAvailable, u.UnavailableUntil = bed.IsActive && room.IsActive, bed.IsAvailable, bed.UnavailableUntil
		u.ParentActive, u.ParentBookingActive, u.PartnerID = hostel.IsActive, hostel.IsBookingActive, hostel.PartnerID
	default:
		return nil, apperror.Validation("booking_type must be seat or bed")
	}

	var partner models.Partner
	if err := tx.Select("id", "status").First(&partner, "id = ?", u.PartnerID).Error; err != nil {
		return nil, notFoundOr(err, "partner not found")
	}
	u.PartnerStatus = partner.Status
	return u, nil
}

// acceptsBookings covers the static checks: active unit, approved partner,
// parent open for booking.
func (u *unit) acceptsBookings() error {
	switch {
	case !u.IsActive:
		return apperror.Validation("this " + string(u.Type) + " is no longer offered")
	case u.PartnerStatus != models.PartnerApproved:
		return apperror.Validation("this property is not accepting bookings")
	case !u.ParentActive || !u.ParentBookingActive:
		return apperror.Validation("bookings are currently disabled for this property")
	}
	return nil
}

// flagBlocks applies the cached availability projection to r.
func (u *unit) flagBlocks(r DateRange) bool {
	if u.IsAvailable {
		return false
	}
	return u.UnavailableUntil == nil || !truncateDay(*u.UnavailableUntil).Before(r.Start)
}

func unitTable(t models.UnitType) string {
	if t == models.UnitBed {
		return "hostel_beds"
	}
	return "seats"
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}
