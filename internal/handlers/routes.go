package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Categories    *CategoryHandler
	Jobs          *JobHandler
	Applications  *ApplicationHandler
	Documents     *DocumentHandler
	Wishlist      *WishlistHandler
	Notifications *NotificationHandler
	Profile       *ProfileHandler
	Chat          *ChatHandler
}

// Endpoints lists the routes mounted by Register, for the root index.
var Endpoints = []string{
	"GET /api/v1/health",
	"GET /api/v1/categories",
	"GET /api/v1/jobs?q=&category=",
	"GET /api/v1/jobs/:id",
	"POST /api/v1/jobs",
	"PATCH /api/v1/jobs/:id/active",
	"POST /api/v1/jobs/extract",
	"POST /api/v1/jobs/extract/:token/confirm",
	"POST /api/v1/jobs/:id/apply",
	"GET /api/v1/jobs/:id/applications",
	"POST /api/v1/jobs/:id/wishlist",
	"GET /api/v1/wishlist",
	"POST /api/v1/documents",
	"GET /api/v1/documents/:id",
	"PATCH /api/v1/applications/:id/status",
	"POST /api/v1/applications/status",
	"GET /api/v1/notifications",
	"POST /api/v1/notifications/:id/read",
	"GET /api/v1/me",
	"PUT /api/v1/me/preferences",
	"POST /api/v1/me/notifications/toggle",
	"POST /api/v1/chat",
	"GET /api/v1/chat/history",
}

// Register mounts the API under api. The authentication middleware must
// already be installed on api.
func (h *Handlers) Register(api fiber.Router) {
	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/categories", h.Categories.HandleList)

	api.Get("/jobs", h.Jobs.HandleSearch)
	api.Post("/jobs", RequireUser, h.Jobs.HandleCreate)
	api.Post("/jobs/extract", RequireUser, h.Jobs.HandleExtract)
	api.Post("/jobs/extract/:token/confirm", RequireUser, h.Jobs.HandleConfirm)
	api.Get("/jobs/:id", h.Jobs.HandleGet)
	api.Patch("/jobs/:id/active", RequireUser, h.Jobs.HandleSetActive)
	api.Post("/jobs/:id/apply", RequireUser, h.Applications.HandleApply)
	api.Get("/jobs/:id/applications", RequireUser, h.Applications.HandleRank)
	api.Post("/jobs/:id/wishlist", RequireUser, h.Wishlist.HandleToggle)

	api.Get("/wishlist", RequireUser, h.Wishlist.HandleList)

	api.Post("/documents", RequireUser, h.Documents.HandleUpload)
	api.Get("/documents/:id", RequireUser, h.Documents.HandleGet)

	api.Patch("/applications/:id/status", RequireUser, h.Applications.HandleUpdateStatus)
	api.Post("/applications/status", RequireUser, h.Applications.HandleBulkStatus)

	api.Get("/notifications", RequireUser, h.Notifications.HandleList)
	api.Post("/notifications/:id/read", RequireUser, h.Notifications.HandleMarkRead)

	api.Get("/me", RequireUser, h.Profile.HandleMe)
	api.Put("/me/preferences", RequireUser, h.Profile.HandleSetPreferences)
	api.Post("/me/notifications/toggle", RequireUser, h.Profile.HandleToggleNotifications)

	// Anonymous visitors may chat; only signed-in conversations are kept.
	api.Post("/chat", h.Chat.HandleSend)
	api.Get("/chat/history", RequireUser, h.Chat.HandleHistory)
}
