package services

import (
	"context"
	"errors"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService manages cabins, hostels and their seats and beds. Units
// are never deleted, only deactivated, so bookings keep a valid reference.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

type UnitPrice struct {
	Price       float64
	DailyPrice  *float64
	WeeklyPrice *float64
}

type SeatInput struct {
	Number int
	UnitPrice
}

type CabinInput struct {
	Name        string
	Address     string
	Description *string
	AreaID      *uuid.UUID
	ImageURL    *string
	Seats       []SeatInput
}

type BedInput struct {
	Number int
	UnitPrice
}

type RoomInput struct {
	RoomNumber string
	Sharing    int
	Beds       []BedInput
}

type HostelInput struct {
	Name     string
	Address  string
	Gender   string
	AreaID   *uuid.UUID
	ImageURL *string
	Rooms    []RoomInput
}

func (s *InventoryService) actingPartner(db *gorm.DB, actor Actor) (uuid.UUID, error) {
	return partnerIDForUser(db, actor.UserID)
}

func (s *InventoryService) authorizeOwner(db *gorm.DB, actor Actor, partnerID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	mine, err := s.actingPartner(db, actor)
	if err != nil {
		return err
	}
	if mine != partnerID {
		return apperror.Forbidden("this property belongs to another partner")
	}
	return nil
}

func validatePrice(p UnitPrice) error {
	if p.Price <= 0 {
		return apperror.Validation("monthly price must be positive")
	}
	if (p.DailyPrice != nil && *p.DailyPrice < 0) || (p.WeeklyPrice != nil && *p.WeeklyPrice < 0) {
		return apperror.Validation("prices must not be negative")
	}
	return nil
}

func newSeat(cabinID uuid.UUID, in SeatInput) models.Seat {
	return models.Seat{
		CabinID: cabinID, Number: in.Number,
		Price: in.Price, DailyPrice: in.DailyPrice, WeeklyPrice: in.WeeklyPrice,
		IsAvailable: true, IsActive: true,
	}
}

func newBed(roomID uuid.UUID, in BedInput) models.HostelBed {
	return models.HostelBed{
		RoomID: roomID, BedNumber: in.Number,
		Price: in.Price, DailyPrice: in.DailyPrice, WeeklyPrice: in.WeeklyPrice,
		IsAvailable: true, IsActive: true,
	}
}

func (s *InventoryService) CreateCabin(ctx context.Context, actor Actor, in CabinInput) (*models.Cabin, error) {
	for _, seat := range in.Seats {
		if err := validatePrice(seat.UnitPrice); err != nil {
			return nil, err
		}
	}
	var cabin models.Cabin
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partnerID, err := s.actingPartner(tx, actor)
		if err != nil {
			return err
		}
		cabin = models.Cabin{
			PartnerID: partnerID, AreaID: in.AreaID, Name: in.Name, Address: in.Address,
			Description: in.Description, ImageURL: in.ImageURL,
			IsBookingActive: true, IsActive: true,
		}
		if err := tx.Create(&cabin).Error; err != nil {
			return err
		}
		for _, si := range in.Seats {
			seat := newSeat(cabin.ID, si)
			if err := tx.Create(&seat).Error; err != nil {
				return err
			}
			cabin.Seats = append(cabin.Seats, seat)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &cabin, nil
}

func (s *InventoryService) AddSeats(ctx context.Context, actor Actor, cabinID uuid.UUID, seats []SeatInput) ([]models.Seat, error) {
	for _, seat := range seats {
		if err := validatePrice(seat.UnitPrice); err != nil {
			return nil, err
		}
	}
	var created []models.Seat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cabin models.Cabin
		if err := tx.First(&cabin, "id = ?", cabinID).Error; err != nil {
			return notFoundOr(err, "cabin not found")
		}
		if err := s.authorizeOwner(tx, actor, cabin.PartnerID); err != nil {
			return err
		}
		for _, si := range seats {
			seat := newSeat(cabin.ID, si)
			if err := tx.Create(&seat).Error; err != nil {
				return err
			}
			created = append(created, seat)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return created, nil
}

func (s *InventoryService) CreateHostel(ctx context.Context, actor Actor, in HostelInput) (*models.Hostel, error) {
	for _, room := range in.Rooms {
		for _, bed := range room.Beds {
			if err := validatePrice(bed.UnitPrice); err != nil {
				return nil, err
			}
		}
	}
	var hostel models.Hostel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partnerID, err := s.actingPartner(tx, actor)
		if err != nil {
			return err
		}
		hostel = models.Hostel{
			PartnerID: partnerID, AreaID: in.AreaID, Name: in.Name, Address: in.Address,
			Gender: in.Gender, ImageURL: in.ImageURL, IsBookingActive: true, IsActive: true,
		}
		if err := tx.Create(&hostel).Error; err != nil {
			return err
		}
		for _, ri := range in.Rooms {
			room, err := createRoom(tx, hostel.ID, ri)
			if err != nil {
				return err
			}
			hostel.Rooms = append(hostel.Rooms, *room)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &hostel, nil
}

func (s *InventoryService) AddRoom(ctx context.Context, actor Actor, hostelID uuid.UUID, in RoomInput) (*models.HostelRoom, error) {
	for _, bed := range in.Beds {
		if err := validatePrice(bed.UnitPrice); err != nil {
			return nil, err
		}
	}
	var room *models.HostelRoom
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hostel models.Hostel
		if err := tx.First(&hostel, "id = ?", hostelID).Error; err != nil {
			return notFoundOr(err, "hostel not found")
		}
		if err := s.authorizeOwner(tx, actor, hostel.PartnerID); err != nil {
			return err
		}
		var err error
		room, err = createRoom(tx, hostel.ID, in)
		return err
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return room, nil
}

func createRoom(tx *gorm.DB, hostelID uuid.UUID, in RoomInput) (*models.HostelRoom, error) {
	room := models.HostelRoom{HostelID: hostelID, RoomNumber: in.RoomNumber, Sharing: in.Sharing, IsActive: true}
	if err := tx.Create(&room).Error; err != nil {
		return nil, err
	}
	for _, bi := range in.Beds {
		bed := newBed(room.ID, bi)
		if err := tx.Create(&bed).Error; err != nil {
			return nil, err
		}
		room.Beds = append(room.Beds, bed)
	}
	return &room, nil
}

// SetBookingActive opens or closes a cabin or hostel for new bookings.
// Existing bookings are unaffected.
func (s *InventoryService) SetBookingActive(ctx context.Context, actor Actor, kind string, id uuid.UUID, active bool) error {
	db := s.db.WithContext(ctx)
	var partnerID uuid.UUID
	var model interface{}
	switch kind {
	case "cabin":
		var c models.Cabin
		if err := db.First(&c, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "cabin not found")
		}
		partnerID, model = c.PartnerID, &models.Cabin{}
	case "hostel":
		var h models.Hostel
		if err := db.First(&h, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "hostel not found")
		}
		partnerID, model = h.PartnerID, &models.Hostel{}
	default:
		return apperror.Validation("kind must be cabin or hostel")
	}
	if err := s.authorizeOwner(db, actor, partnerID); err != nil {
		return err
	}
	if err := db.Model(model).Where("id = ?", id).Update("is_booking_active", active).Error; err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// unitOwner resolves the partner owning a seat or bed.
func unitOwner(db *gorm.DB, t models.UnitType, id uuid.UUID) (uuid.UUID, error) {
	u, err := loadUnit(db, t, id, false)
	if err != nil {
		return uuid.Nil, err
	}
	return u.PartnerID, nil
}

// UpdatePrice changes the rates of a unit. Bookings already placed keep the
// price they were quoted.
func (s *InventoryService) UpdatePrice(ctx context.Context, actor Actor, t models.UnitType, id uuid.UUID, p UnitPrice) error {
	if err := validatePrice(p); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partnerID, err := unitOwner(tx, t, id)
		if err != nil {
			return err
		}
		if err := s.authorizeOwner(tx, actor, partnerID); err != nil {
			return err
		}
		return tx.Table(unitTable(t)).Where("id = ?", id).Updates(map[string]interface{}{
			"price": p.Price, "daily_price": p.DailyPrice, "weekly_price": p.WeeklyPrice,
		}).Error
	})
	return asAppError(err)
}

// SetUnitActive soft-deactivates or reactivates a seat or bed.
func (s *InventoryService) SetUnitActive(ctx context.Context, actor Actor, t models.UnitType, id uuid.UUID, active bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := loadUnit(tx, t, id, true)
		if err != nil {
			return err
		}
		if err := s.authorizeOwner(tx, actor, u.PartnerID); err != nil {
			return err
		}
		return tx.Table(unitTable(t)).Where("id = ?", id).Update("is_active", active).Error
	})
	return asAppError(err)
}

type ListingFilter struct {
	AreaID    *uuid.UUID
	PartnerID *uuid.UUID
	// IncludeInactive is honoured for owners and admins only
	IncludeInactive bool
}

// ListCabins returns cabins of approved partners with their active seats.
func (s *InventoryService) ListCabins(ctx context.Context, f ListingFilter) ([]models.Cabin, error) {
	q := s.db.WithContext(ctx).Model(&models.Cabin{}).
		Joins("JOIN partners ON partners.id = cabins.partner_id")
	if !f.IncludeInactive {
		q = q.Where("partners.status = ? AND cabins.is_active = ?", models.PartnerApproved, true).
			Preload("Seats", "is_active = ?", true)
	} else {
		q = q.Preload("Seats")
	}
	if f.AreaID != nil {
		q = q.Where("cabins.area_id = ?", *f.AreaID)
	}
	if f.PartnerID != nil {
		q = q.Where("cabins.partner_id = ?", *f.PartnerID)
	}
	var cabins []models.Cabin
	if err := q.Order("cabins.name").Find(&cabins).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return cabins, nil
}

func (s *InventoryService) ListHostels(ctx context.Context, f ListingFilter) ([]models.Hostel, error) {
	q := s.db.WithContext(ctx).Model(&models.Hostel{}).
		Joins("JOIN partners ON partners.id = hostels.partner_id")
	if !f.IncludeInactive {
		q = q.Where("partners.status = ? AND hostels.is_active = ?", models.PartnerApproved, true).
			Preload("Rooms", "is_active = ?", true).
			Preload("Rooms.Beds", "is_active = ?", true)
	} else {
		q = q.Preload("Rooms").Preload("Rooms.Beds")
	}
	if f.AreaID != nil {
		q = q.Where("hostels.area_id = ?", *f.AreaID)
	}
	if f.PartnerID != nil {
		q = q.Where("hostels.partner_id = ?", *f.PartnerID)
	}
	var hostels []models.Hostel
	if err := q.Order("hostels.name").Find(&hostels).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	return hostels, nil
}

// MyInventory lists everything the acting vendor owns, including inactive units.
func (s *InventoryService) MyInventory(ctx context.Context, actor Actor) ([]models.Cabin, []models.Hostel, error) {
	partnerID, err := s.actingPartner(s.db.WithContext(ctx), actor)
	if err != nil {
		return nil, nil, err
	}
	f := ListingFilter{PartnerID: &partnerID, IncludeInactive: true}
	cabins, err := s.ListCabins(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	hostels, err := s.ListHostels(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return cabins, hostels, nil
}

func asAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(err)
}
