package handlers

import (
	"errors"

	"github.com/anjiri1684/study_space/apperror"
	"github.com/anjiri1684/study_space/services"
	"github.com/anjiri1684/study_space/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// Handler groups the HTTP endpoints. Every field is required except Hub,
// which only the websocket route uses.
type Handler struct {
	Auth      *services.AuthService
	Bookings  *services.BookingService
	Payments  *services.PaymentService
	Partners  *services.PartnerService
	Locations *services.LocationService
	Inventory *services.InventoryService
	Reports   *services.ReportService
	Receipts  *services.ReceiptService
	Hub       *websocket.Hub
	Uploads   UploadConfig
	Log       *logrus.Logger
}

// ErrorHandler renders every error returned by a handler. Service errors keep
// their kind and retry hint; anything else is a 500 with a generic message.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			status := apperror.HTTPStatus(appErr.Kind)
			if appErr.Kind == apperror.KindInternal {
				log.WithError(err).WithFields(logrus.Fields{"path": c.Path(), "method": c.Method()}).Error("🔥 Request failed")
			}
			return c.Status(status).JSON(fiber.Map{
				"error":     appErr.Message,
				"code":      appErr.Kind,
				"retryable": appErr.Retryable,
			})
		}

		code := fiber.StatusInternalServerError
		msg := "internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, msg = fe.Code, fe.Message
		} else {
			log.WithError(err).WithFields(logrus.Fields{"path": c.Path(), "method": c.Method()}).Error("🔥 Request failed")
		}
		return c.Status(code).JSON(fiber.Map{"error": msg, "code": code})
	}
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("invalid id " + raw)
	}
	return &id, nil
}
