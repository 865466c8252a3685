package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/services"
)

type CategoryHandler struct {
	taxonomy services.TaxonomyService
}

func NewCategoryHandler(taxonomy services.TaxonomyService) *CategoryHandler {
	return &CategoryHandler{
		taxonomy: taxonomy,
	}
}

// HandleList handles GET /categories
func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	categories, err := h.taxonomy.List()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"count":      len(categories),
		"categories": categories,
	})
}
