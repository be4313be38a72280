package handlers

import (
	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
)

type PriceRequest struct {
	Price       float64  `json:"price" validate:"required,gt=0"`
	DailyPrice  *float64 `json:"daily_price,omitempty" validate:"omitempty,gte=0"`
	WeeklyPrice *float64 `json:"weekly_price,omitempty" validate:"omitempty,gte=0"`
}

func (p PriceRequest) unitPrice() services.UnitPrice {
	return services.UnitPrice{Price: p.Price, DailyPrice: p.DailyPrice, WeeklyPrice: p.WeeklyPrice}
}

type SeatRequest struct {
	Number int `json:"number" validate:"required,min=1"`
	PriceRequest
}

type CabinRequest struct {
	Name        string        `json:"name" validate:"required,min=2"`
	Address     string        `json:"address" validate:"required"`
	Description *string       `json:"description,omitempty"`
	AreaID      string        `json:"area_id,omitempty" validate:"omitempty,uuid"`
	ImageURL    *string       `json:"image_url,omitempty" validate:"omitempty,url"`
	Seats       []SeatRequest `json:"seats" validate:"dive"`
}

type SeatsRequest struct {
	Seats []SeatRequest `json:"seats" validate:"required,min=1,dive"`
}

type BedRequest struct {
	Number int `json:"number" validate:"required,min=1"`
	PriceRequest
}

type RoomRequest struct {
	RoomNumber string       `json:"room_number" validate:"required"`
	Sharing    int          `json:"sharing" validate:"required,min=1"`
	Beds       []BedRequest `json:"beds" validate:"dive"`
}

type HostelRequest struct {
	Name     string        `json:"name" validate:"required,min=2"`
	Address  string        `json:"address" validate:"required"`
	Gender   string        `json:"gender" validate:"required,oneof=male female coed"`
	AreaID   string        `json:"area_id,omitempty" validate:"omitempty,uuid"`
	ImageURL *string       `json:"image_url,omitempty" validate:"omitempty,url"`
	Rooms    []RoomRequest `json:"rooms" validate:"dive"`
}

type ToggleRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func seatInputs(reqs []SeatRequest) []services.SeatInput {
	out := make([]services.SeatInput, 0, len(reqs))
	for _, s := range reqs {
		out = append(out, services.SeatInput{Number: s.Number, UnitPrice: s.unitPrice()})
	}
	return out
}

func roomInput(r RoomRequest) services.RoomInput {
	in := services.RoomInput{RoomNumber: r.RoomNumber, Sharing: r.Sharing}
	for _, b := range r.Beds {
		in.Beds = append(in.Beds, services.BedInput{Number: b.Number, UnitPrice: b.unitPrice()})
	}
	return in
}

func unitTypeParam(c *fiber.Ctx) (models.UnitType, error) {
	t := models.UnitType(c.Params("type"))
	if !t.Valid() {
		return "", apperror.Validation("unit type must be seat or bed")
	}
	return t, nil
}

func (h *Handler) ListCabins(c *fiber.Ctx) error {
	areaID, err := optionalUUID(c.Query("area_id"))
	if err != nil {
		return err
	}
	cabins, err := h.Inventory.ListCabins(c.UserContext(), services.ListingFilter{AreaID: areaID})
	if err != nil {
		return err
	}
	return c.JSON(cabins)
}

func (h *Handler) ListHostels(c *fiber.Ctx) error {
	areaID, err := optionalUUID(c.Query("area_id"))
	if err != nil {
		return err
	}
	hostels, err := h.Inventory.ListHostels(c.UserContext(), services.ListingFilter{AreaID: areaID})
	if err != nil {
		return err
	}
	return c.JSON(hostels)
}

func (h *Handler) MyInventory(c *fiber.Ctx) error {
	cabins, hostels, err := h.Inventory.MyInventory(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cabins": cabins, "hostels": hostels})
}

func (h *Handler) CreateCabin(c *fiber.Ctx) error {
	var req CabinRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	areaID, err := optionalUUID(req.AreaID)
	if err != nil {
		return err
	}
	cabin, err := h.Inventory.CreateCabin(c.UserContext(), middleware.CurrentActor(c), services.CabinInput{
		Name: req.Name, Address: req.Address, Description: req.Description,
		AreaID: areaID, ImageURL: req.ImageURL, Seats: seatInputs(req.Seats),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cabin)
}

func (h *Handler) AddSeats(c *fiber.Ctx) error {
	cabinID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req SeatsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	seats, err := h.Inventory.AddSeats(c.UserContext(), middleware.CurrentActor(c), cabinID, seatInputs(req.Seats))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(seats)
}

func (h *Handler) CreateHostel(c *fiber.Ctx) error {
	var req HostelRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	areaID, err := optionalUUID(req.AreaID)
	if err != nil {
		return err
	}
	in := services.HostelInput{
		Name: req.Name, Address: req.Address, Gender: req.Gender, AreaID: areaID, ImageURL: req.ImageURL,
	}
	for _, r := range req.Rooms {
		in.Rooms = append(in.Rooms, roomInput(r))
	}
	hostel, err := h.Inventory.CreateHostel(c.UserContext(), middleware.CurrentActor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(hostel)
}

func (h *Handler) AddRoom(c *fiber.Ctx) error {
	hostelID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req RoomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	room, err := h.Inventory.AddRoom(c.UserContext(), middleware.CurrentActor(c), hostelID, roomInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// SetBookingActive handles PATCH /vendor/:kind/:id/booking-active for
// cabins and hostels.
func (h *Handler) SetBookingActive(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req ToggleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	kind := c.Params("kind")
	if err := h.Inventory.SetBookingActive(c.UserContext(), middleware.CurrentActor(c), kind, id, *req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Booking status updated", "is_booking_active": *req.Active})
}

func (h *Handler) UpdateUnitPrice(c *fiber.Ctx) error {
	t, err := unitTypeParam(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req PriceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Inventory.UpdatePrice(c.UserContext(), middleware.CurrentActor(c), t, id, req.unitPrice()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Price updated"})
}

func (h *Handler) SetUnitActive(c *fiber.Ctx) error {
	t, err := unitTypeParam(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req ToggleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Inventory.SetUnitActive(c.UserContext(), middleware.CurrentActor(c), t, id, *req.Active); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Unit updated", "is_active": *req.Active})
}
