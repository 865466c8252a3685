package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/repositories"
)

type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
	}
}

// HandleList handles GET /notifications
func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	notifications, err := h.notificationRepo.ListByUser(currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return c.JSON(fiber.Map{
		"count":         len(notifications),
		"unread":        unread,
		"notifications": notifications,
	})
}

// HandleMarkRead handles POST /notifications/:id/read
func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid notification ID format")
	}

	if err := h.notificationRepo.MarkRead(id, currentUser(c).ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Notification not found",
			})
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":      id,
		"is_read": true,
	})
}
