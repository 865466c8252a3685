package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/repositories"
	"github.com/findajob/jobboard/internal/services"
)

type WishlistHandler struct {
	wishlistRepo repositories.WishlistRepository
	listings     services.ListingService
}

func NewWishlistHandler(wishlistRepo repositories.WishlistRepository, listings services.ListingService) *WishlistHandler {
	return &WishlistHandler{
		wishlistRepo: wishlistRepo,
		listings:     listings,
	}
}

// HandleToggle handles POST /jobs/:id/wishlist
func (h *WishlistHandler) HandleToggle(c *fiber.Ctx) error {
	jobID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid job ID format")
	}

	if _, err := h.listings.Get(c.UserContext(), jobID); err != nil {
		return respondError(c, err)
	}

	saved, err := h.wishlistRepo.Toggle(currentUser(c).ID, jobID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.WishlistToggleResponse{
		JobID: jobID,
		Saved: saved,
	})
}

// HandleList handles GET /wishlist
func (h *WishlistHandler) HandleList(c *fiber.Ctx) error {
	items, err := h.wishlistRepo.ListByUser(currentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(items),
		"items": items,
	})
}
