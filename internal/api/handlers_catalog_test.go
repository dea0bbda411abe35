package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoops-ai/backend/internal/analytics"
	"github.com/autoops-ai/backend/internal/catalog"
	"github.com/autoops-ai/backend/internal/models"
)

type stubAnalytics struct {
	summary *analytics.Summary
	err     error
}

func (s stubAnalytics) Summary(context.Context) (*analytics.Summary, error) {
	return s.summary, s.err
}

func newCatalogHandler(t *testing.T, source AnalyticsSource) CatalogHandler {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewCatalogHandler(c, source)
}

func get(t *testing.T, fn echo.HandlerFunc, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return rec, fn(c)
}

func TestCatalogHandler_Dashboard(t *testing.T) {
	h := newCatalogHandler(t, nil)

	rec, err := get(t, h.HandleGetDashboard)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var dash catalog.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Len(t, dash.Stats, 4)
	require.Len(t, dash.RecentActivity, 4)
	assert.Equal(t, "Invoice Processing", dash.RecentActivity[0].Type)
	assert.Contains(t, rec.Body.String(), `"recentActivity"`)
}

func TestCatalogHandler_Workflows(t *testing.T) {
	h := newCatalogHandler(t, nil)

	rec, err := get(t, h.HandleGetWorkflows)
	require.NoError(t, err)
	var resp workflowsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Workflows, 3)
	assert.Equal(t, "Contract Risk Assessment", resp.Workflows[1].Name)

	rec, err = get(t, h.HandleGetWorkflow, "id", "3")
	require.NoError(t, err)
	var wf models.Workflow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wf))
	assert.Equal(t, "Customer Service Automation", wf.Name)
	assert.Equal(t, 89, wf.TriggerCount)

	_, err = get(t, h.HandleGetWorkflow, "id", "99")
	assertAPIError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestCatalogHandler_EmptyWorkflowsRenderAsArray(t *testing.T) {
	h := NewCatalogHandler(&catalog.Catalog{}, nil)

	rec, err := get(t, h.HandleGetWorkflows)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workflows":[]}`, rec.Body.String())
}

func TestCatalogHandler_Settings(t *testing.T) {
	h := newCatalogHandler(t, nil)

	rec, err := get(t, h.HandleGetSettings)
	require.NoError(t, err)
	var settings models.SettingsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Len(t, settings.Integrations, 5)
	assert.Equal(t, 2, settings.Team.PendingInvitations)
}

func TestCatalogHandler_Analytics(t *testing.T) {
	t.Run("without live store", func(t *testing.T) {
		h := newCatalogHandler(t, nil)

		rec, err := get(t, h.HandleGetAnalytics)
		require.NoError(t, err)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body, "metrics")
		assert.Contains(t, body, "departments")
		assert.Contains(t, body, "workflowPerformance")
		assert.NotContains(t, body, "live")
	})

	t.Run("with live summary", func(t *testing.T) {
		h := newCatalogHandler(t, stubAnalytics{summary: &analytics.Summary{
			Total: 3, Completed: 2, Failed: 1, AvgConfidence: 96.5,
			ByStatus: map[string]int{"completed": 2, "error": 1},
			ByType:   []analytics.TypeCount{{DocumentType: "Invoice", Count: 2, AvgConfidence: 96.5}},
		}})

		rec, err := get(t, h.HandleGetAnalytics)
		require.NoError(t, err)

		var resp analyticsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Live)
		assert.Equal(t, 3, resp.Live.Total)
		assert.Len(t, resp.Metrics, 4)
	})

	t.Run("closed store", func(t *testing.T) {
		h := newCatalogHandler(t, stubAnalytics{err: analytics.ErrStoreClosed})

		_, err := get(t, h.HandleGetAnalytics)
		assertAPIError(t, err, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
	})

	t.Run("query failure", func(t *testing.T) {
		h := newCatalogHandler(t, stubAnalytics{err: assert.AnError})

		_, err := get(t, h.HandleGetAnalytics)
		assertAPIError(t, err, http.StatusInternalServerError, "INTERNAL_ERROR")
	})
}
