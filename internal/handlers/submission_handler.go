package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/TopengDev/ai-resume-analyzer/internal/models"
	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

type SubmissionHandler struct {
	pipeline    *services.SubmissionPipeline
	maxFileSize int64
}

func NewSubmissionHandler(pipeline *services.SubmissionPipeline, maxFileSize int64) *SubmissionHandler {
	return &SubmissionHandler{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
	}
}

// HandleSubmit handles POST /submissions. The request is a multipart
// form carrying the job context fields and the resume PDF; the pipeline
// runs to completion before the response is written.
func (h *SubmissionHandler) HandleSubmit(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	req := services.SubmissionRequest{
		CompanyName:    c.FormValue("company_name"),
		JobTitle:       c.FormValue("job_title"),
		JobDescription: c.FormValue("job_description"),
		FileName:       fileHeader.Filename,
		Resume:         data,
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	id, err := h.pipeline.Submit(c.Context(), req)
	if err != nil {
		return h.submitError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SubmitResponse{
		ID:     id,
		Status: services.StateComplete.String(),
	})
}

func (h *SubmissionHandler) submitError(c *fiber.Ctx, err error) error {
	status := h.pipeline.Status()

	var parseErr *services.FeedbackParseError

	switch {
	case errors.Is(err, services.ErrSubmissionInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Another submission is being processed. Please wait for it to finish.",
		})
	case errors.Is(err, services.ErrUsageLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": status.StatusText,
		})
	case errors.Is(err, services.ErrInferenceUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  status.StatusText,
			"status": status.State.String(),
		})
	case errors.As(err, &parseErr), errors.Is(err, services.ErrUnrecognizedContent):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  status.StatusText,
			"status": status.State.String(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  status.StatusText,
			"status": status.State.String(),
		})
	}
}

// HandleStatus handles GET /status.
func (h *SubmissionHandler) HandleStatus(c *fiber.Ctx) error {
	status := h.pipeline.Status()
	return c.JSON(models.StatusResponse{
		State:      status.State.String(),
		StatusText: status.StatusText,
		Progress:   status.Progress,
	})
}
