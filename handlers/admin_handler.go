package handlers

import (
	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
)

type PartnerApplyRequest struct {
	BusinessName string `json:"business_name" validate:"required,min=2"`
	ContactPhone string `json:"contact_phone" validate:"required,max=20"`
}

type PartnerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected suspended"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type CommissionRequest struct {
	Type  string  `json:"type" validate:"required,oneof=percentage flat"`
	Value float64 `json:"value" validate:"gte=0"`
}

func (h *Handler) ApplyAsPartner(c *fiber.Ctx) error {
	var req PartnerApplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	partner, err := h.Partners.Apply(c.UserContext(), middleware.CurrentActor(c), services.PartnerApplication{
		BusinessName: req.BusinessName, ContactPhone: req.ContactPhone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Application submitted and is pending review.",
		"partner": partner,
	})
}

func (h *Handler) MyPartnerAccount(c *fiber.Ctx) error {
	partner, err := h.Partners.Mine(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(partner)
}

func (h *Handler) ListPartners(c *fiber.Ctx) error {
	partners, err := h.Partners.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(partners)
}

func (h *Handler) UpdatePartnerStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req PartnerStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	partner, err := h.Partners.SetStatus(c.UserContext(), id, req.Status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Partner status updated to " + req.Status, "partner": partner})
}

func (h *Handler) UpdatePartnerCommission(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req CommissionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	partner, err := h.Partners.UpdateCommission(c.UserContext(), id, models.CommissionSettings{Type: req.Type, Value: req.Value})
	if err != nil {
		return err
	}
	return c.JSON(partner)
}
