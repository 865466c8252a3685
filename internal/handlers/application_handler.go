package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

type ApplicationHandler struct {
	applications services.ApplicationService
}

func NewApplicationHandler(applications services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
	}
}

// HandleApply handles POST /jobs/:id/apply
func (h *ApplicationHandler) HandleApply(c *fiber.Ctx) error {
	jobID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid job ID format")
	}

	var req models.ApplyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request payload")
		}
	}

	format, err := services.ParseDocumentFormat(req.Format)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.applications.Apply(c.UserContext(), currentUser(c), jobID, services.ApplyInput{
		CVDocumentID:          req.CVDocumentID,
		CoverLetterDocumentID: req.CoverLetterDocumentID,
		CoverLetterText:       req.CoverLetterText,
		GenerateCoverLetter:   req.GenerateCoverLetter,
		Format:                format,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleRank handles GET /jobs/:id/applications
func (h *ApplicationHandler) HandleRank(c *fiber.Ctx) error {
	jobID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid job ID format")
	}

	minCV, err := optionalInt(c, "min_cv_score")
	if err != nil {
		return badRequest(c, "Invalid min_cv_score")
	}
	minLetter, err := optionalInt(c, "min_cover_letter_score")
	if err != nil {
		return badRequest(c, "Invalid min_cover_letter_score")
	}

	resp, err := h.applications.Rank(c.UserContext(), currentUser(c), jobID, services.ApplicantFilter{
		Search:              strings.TrimSpace(c.Query("search")),
		Status:              models.ApplicationStatus(c.Query("status")),
		MinCVScore:          minCV,
		MinCoverLetterScore: minLetter,
		Sort:                c.Query("sort", services.SortByCVScore),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(resp)
}

// HandleUpdateStatus handles PATCH /applications/:id/status
func (h *ApplicationHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid application ID format")
	}

	var req models.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	app, err := h.applications.UpdateStatus(c.UserContext(), currentUser(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(app)
}

// HandleBulkStatus handles POST /applications/status
func (h *ApplicationHandler) HandleBulkStatus(c *fiber.Ctx) error {
	var req models.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	if len(req.ApplicationIDs) == 0 {
		return badRequest(c, "application_ids is required")
	}

	updated, err := h.applications.BulkUpdateStatus(c.UserContext(), currentUser(c), req.ApplicationIDs, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.BulkStatusResponse{
		Updated: updated,
		Status:  req.Status,
	})
}
