package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TopengDev/ai-resume-analyzer/internal/models"
	"github.com/TopengDev/ai-resume-analyzer/internal/repositories"
	"github.com/TopengDev/ai-resume-analyzer/internal/services"
)

func newResumeApp(t *testing.T) (*fiber.App, *repositories.MemoryRecordStore) {
	t.Helper()

	store := repositories.NewMemoryRecordStore()
	handler := NewResumeHandler(services.NewResumeProjection(store))

	app := fiber.New()
	app.Get("/api/v1/submissions", handler.HandleList)
	app.Get("/api/v1/submissions/:id", handler.HandleGetResume)
	return app, store
}

func storeRecord(t *testing.T, store repositories.RecordStore, id, feedback string) {
	t.Helper()

	record := &models.ResumeRecord{ID: id, CompanyName: "Acme", JobTitle: "Engineer"}
	if feedback != "" {
		fb, err := models.NewFeedback([]byte(feedback))
		require.NoError(t, err)
		record.Feedback = fb
	}
	value, err := record.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), repositories.RecordKey(id), value))
}

func TestHandleListFiltersIncomplete(t *testing.T) {
	app, store := newResumeApp(t)
	storeRecord(t, store, "done", `{"overallScore":88}`)
	storeRecord(t, store, "pending", "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Resumes []models.ResumeRecord `json:"resumes"`
		Count   int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, 1, payload.Count)
	assert.Equal(t, "done", payload.Resumes[0].ID)
}

func TestHandleGetResume(t *testing.T) {
	app, store := newResumeApp(t)
	storeRecord(t, store, "pending", "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/pending", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var record models.ResumeRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "pending", record.ID)
	assert.True(t, record.Feedback.IsEmpty())
}

func TestHandleGetResumeNotFound(t *testing.T) {
	app, _ := newResumeApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
