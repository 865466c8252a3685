package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/findajob/jobboard/internal/models"
	"github.com/findajob/jobboard/internal/services"
)

type DocumentHandler struct {
	documents   services.DocumentService
	maxFileSize int64
}

func NewDocumentHandler(documents services.DocumentService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{
		documents:   documents,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /documents
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded. Send the document in the 'file' field.")
	}

	if file.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize))
	}

	docType := models.DocumentType(c.FormValue("document_type", string(models.DocumentCV)))

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to read uploaded file: %v", err),
		})
	}
	defer src.Close()

	resp, err := h.documents.Upload(c.UserContext(), currentUser(c), docType, file.Filename, src)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleGet handles GET /documents/:id
func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid document ID format")
	}

	doc, err := h.documents.FindForUser(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(doc)
}
