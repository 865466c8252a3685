package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

type JobHandler struct {
	search     services.SearchService
	listings   services.ListingService
	extraction services.ExtractionService
}

func NewJobHandler(
	search services.SearchService,
	listings services.ListingService,
	extraction services.ExtractionService,
) *JobHandler {
	return &JobHandler{
		search:     search,
		listings:   listings,
		extraction: extraction,
	}
}

// HandleSearch handles GET /jobs
func (h *JobHandler) HandleSearch(c *fiber.Ctx) error {
	// A category that is not an id drops the category filter but still
	// turns off the preference feed.
	categoryID, err := optionalUint(c, "category")
	if err != nil {
		categoryID = nil
	}

	query := strings.TrimSpace(c.Query("q"))
	jobs, err := h.search.Search(c.UserContext(), services.SearchParams{
		Query:         query,
		CategoryID:    categoryID,
		CategoryGiven: c.Query("category") != "",
		User:          currentUser(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SearchResponse{
		Query:      query,
		CategoryID: categoryID,
		Count:      len(jobs),
		Jobs:       jobs,
	})
}

// HandleGet handles GET /jobs/:id
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid job ID format")
	}

	job, err := h.listings.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

// HandleCreate handles POST /jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	job, err := h.listings.Create(c.UserContext(), currentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

// HandleSetActive handles PATCH /jobs/:id/active
func (h *JobHandler) HandleSetActive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid job ID format")
	}

	var req models.ActiveToggleRequest
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "is_active is required")
	}

	job, err := h.listings.SetActive(c.UserContext(), currentUser(c), id, *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(job)
}

// HandleExtract handles POST /jobs/extract
func (h *JobHandler) HandleExtract(c *fiber.Ctx) error {
	var req models.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if strings.TrimSpace(req.Text) == "" {
		return badRequest(c, "text is required")
	}

	preview, err := h.extraction.Preview(c.UserContext(), currentUser(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(preview)
}

// HandleConfirm handles POST /jobs/extract/:token/confirm
func (h *JobHandler) HandleConfirm(c *fiber.Ctx) error {
	var req models.ConfirmExtractionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request payload")
		}
	}

	job, err := h.extraction.Confirm(c.UserContext(), currentUser(c), c.Params("token"), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}
