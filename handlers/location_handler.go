package handlers

import "github.com/gofiber/fiber/v2"

type NameRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (h *Handler) ListLocations(c *fiber.Ctx) error {
	states, err := h.Locations.Tree(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(states)
}

func (h *Handler) CreateState(c *fiber.Ctx) error {
	var req NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	state, err := h.Locations.CreateState(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (h *Handler) CreateCity(c *fiber.Ctx) error {
	stateID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	city, err := h.Locations.CreateCity(c.UserContext(), stateID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

func (h *Handler) CreateArea(c *fiber.Ctx) error {
	cityID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req NameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	area, err := h.Locations.CreateArea(c.UserContext(), cityID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(area)
}
