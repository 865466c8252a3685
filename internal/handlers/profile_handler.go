package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

type ProfileHandler struct {
	users services.UserService
}

func NewProfileHandler(users services.UserService) *ProfileHandler {
	return &ProfileHandler{
		users: users,
	}
}

// HandleMe handles GET /me
func (h *ProfileHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

// HandleSetPreferences handles PUT /me/preferences
func (h *ProfileHandler) HandleSetPreferences(c *fiber.Ctx) error {
	var req models.PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.users.SetPreferredCategories(c.UserContext(), currentUser(c).ID, req.CategoryIDs)
	if err != nil {
		return respondError(c, err)
	}

	categories := []models.JobCategory{}
	if user.Profile != nil && user.Profile.PreferredCategories != nil {
		categories = user.Profile.PreferredCategories
	}
	return c.JSON(fiber.Map{
		"count":                len(categories),
		"preferred_categories": categories,
	})
}

// HandleToggleNotifications handles POST /me/notifications/toggle
func (h *ProfileHandler) HandleToggleNotifications(c *fiber.Ctx) error {
	var req models.NotificationToggleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request payload")
		}
	}

	pref, err := h.users.SetNotificationChannel(c.UserContext(), currentUser(c).ID, req.Type, req.Enabled)
	if err != nil {
		return respondError(c, err)
	}

	channel, enabled := services.ChannelEmail, pref.EmailEnabled
	if strings.EqualFold(strings.TrimSpace(req.Type), services.ChannelWhatsapp) {
		channel, enabled = services.ChannelWhatsapp, pref.WhatsappEnabled
	}
	return c.JSON(fiber.Map{
		"type":       channel,
		"enabled":    enabled,
		"preference": pref,
	})
}
