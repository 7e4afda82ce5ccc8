package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/TopengDev/ai-resume-analyzer/internal/models"
	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

type ResumeHandler struct {
	projection services.ResumeProjection
}

func NewResumeHandler(projection services.ResumeProjection) *ResumeHandler {
	return &ResumeHandler{projection: projection}
}

// HandleList handles GET /submissions. Only records with completed
// feedback appear.
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumes, err := h.projection.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resumes",
		})
	}

	return c.JSON(models.ListResponse{
		Resumes: resumes,
		Count:   len(resumes),
	})
}

// HandleGetResume handles GET /submissions/:id.
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	record, err := h.projection.Get(c.Context(), id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resume",
		})
	}

	return c.JSON(record)
}
