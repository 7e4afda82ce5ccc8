package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

type ArtifactHandler struct {
	contentStore services.ContentStore
}

func NewArtifactHandler(contentStore services.ContentStore) *ArtifactHandler {
	return &ArtifactHandler{contentStore: contentStore}
}

// HandleGetArtifact handles GET /artifacts/* and streams a stored
// binary artifact back by its path reference.
func (h *ArtifactHandler) HandleGetArtifact(c *fiber.Ctx) error {
	path := c.Params("*")
	if path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "artifact path is required",
		})
	}

	blob, err := h.contentStore.Open(c.Context(), path)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Artifact not found",
		})
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read artifact",
		})
	}

	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}
