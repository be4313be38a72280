package middleware

import (
	"github.com/anjiri1684/study_space/models"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const actorKey = "actor"

// Protected validates the bearer token and stores the caller as a
// services.Actor in the request locals.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		ErrorHandler:   jwtError,
		SuccessHandler: storeActor,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func storeActor(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtError(c, fiber.ErrUnauthorized)
	}
	actor, err := services.ActorFromClaims(claims)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(actorKey, actor)
	return c.Next()
}

// CurrentActor returns the caller stored by Protected. Unauthenticated
// requests get the zero Actor.
func CurrentActor(c *fiber.Ctx) services.Actor {
	actor, _ := c.Locals(actorKey).(services.Actor)
	return actor
}

func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: insufficient role",
		})
	}
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentActor(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// VendorRequired admits vendors and admins.
func VendorRequired() fiber.Handler {
	return RequireRole(models.RoleVendor, models.RoleAdmin)
}
