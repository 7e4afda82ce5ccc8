package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

type stubContentStore struct {
	uploads int
}

func (s *stubContentStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	s.uploads++
	return fmt.Sprintf("stored-%d", s.uploads), nil
}

func (s *stubContentStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not stored: %s", path)
}

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, data []byte) (*services.ImageArtifact, error) {
	return &services.ImageArtifact{File: []byte("png-bytes"), ImageDataURL: "data:image/png;base64,cA=="}, nil
}

type stubInference struct {
	err error
}

func (s *stubInference) Feedback(ctx context.Context, documentRef string, inst services.Instruction) (*services.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.Completion{
		Message: services.Message{Content: services.PlainContent(`{"overallScore":77}`)},
	}, nil
}

type stubIDs struct{ id string }

func (s stubIDs) Generate() string { return s.id }

func newTestApp(inference services.InferenceClient) (*fiber.App, *repositories.MemoryRecordStore) {
	store := repositories.NewMemoryRecordStore()
	pipeline := services.NewSubmissionPipeline(
		stubIDs{id: "sub-1"},
		&stubContentStore{},
		stubConverter{},
		store,
		inference,
	)
	handler := NewSubmissionHandler(pipeline, 10*1024*1024)

	app := fiber.New()
	app.Post("/api/v1/submissions", handler.HandleSubmit)
	app.Get("/api/v1/status", handler.HandleStatus)
	return app, store
}

func multipartSubmission(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withFile {
		part, err := writer.CreateFormFile("resume", "resume.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"company_name":    "Acme",
		"job_title":       "Backend Engineer",
		"job_description": "Build Go services",
	}
}

func TestHandleSubmitCreated(t *testing.T) {
	app, store := newTestApp(&stubInference{})

	resp, err := app.Test(multipartSubmission(t, validFields(), true), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "sub-1", payload.ID)
	assert.Equal(t, "complete", payload.Status)
	assert.Equal(t, 1, store.Len())
}

func TestHandleSubmitMissingFile(t *testing.T) {
	app, _ := newTestApp(&stubInference{})

	resp, err := app.Test(multipartSubmission(t, validFields(), false), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSubmitMissingField(t *testing.T) {
	app, _ := newTestApp(&stubInference{})

	fields := validFields()
	delete(fields, "job_title")

	resp, err := app.Test(multipartSubmission(t, fields, true), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleSubmitInferenceDown(t *testing.T) {
	app, store := newTestApp(&stubInference{err: fmt.Errorf("backend exploded")})

	resp, err := app.Test(multipartSubmission(t, validFields(), true), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	// The partial record from the first persistence phase survives.
	assert.Equal(t, 1, store.Len())
}

func TestHandleSubmitUsageLimited(t *testing.T) {
	app, _ := newTestApp(&stubInference{err: fmt.Errorf("blocked: usage-limited-chat")})

	resp, err := app.Test(multipartSubmission(t, validFields(), true), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.Error, "usage limit")
}

func TestHandleStatus(t *testing.T) {
	app, _ := newTestApp(&stubInference{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		State    string  `json:"state"`
		Progress float64 `json:"progress"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "idle", payload.State)
}
