package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

const (
	UserHeader = "X-User-ID"
	userKey    = "user"
)

// Authenticate resolves the X-User-ID header to an active user. Requests
// without the header continue anonymously.
func Authenticate(users services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(UserHeader)
		if raw == "" {
			return c.Next()
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid " + UserHeader + " header",
			})
		}

		user, err := users.FindByID(c.UserContext(), uint(id))
		if err != nil || !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown or inactive user",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// optionalUint parses an optional numeric query value.
func optionalUint(c *fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	id := uint(v)
	return &id, nil
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
