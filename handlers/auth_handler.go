package handlers

import (
	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type DeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=android ios web"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.Auth.Register(c.UserContext(), services.RegisterInput{
		FullName: req.FullName, Email: req.Email, Password: req.Password, Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, user, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.Auth.Me(c.UserContext(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) RegisterDevice(c *fiber.Ctx) error {
	var req DeviceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dt, err := h.Auth.RegisterDevice(c.UserContext(), middleware.CurrentActor(c), req.Token, req.Platform)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dt)
}
