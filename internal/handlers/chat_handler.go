package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{
		chat: chat,
	}
}

// HandleSend handles POST /chat
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if strings.TrimSpace(req.Message) == "" {
		return badRequest(c, "message is required")
	}

	reply, err := h.chat.Send(c.UserContext(), currentUser(c), req.Message)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ChatResponse{Response: reply})
}

// HandleHistory handles GET /chat/history
func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	history, err := h.chat.History(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	if history == nil {
		history = []models.ChatMessage{}
	}

	return c.JSON(models.ChatHistoryResponse{History: history})
}
