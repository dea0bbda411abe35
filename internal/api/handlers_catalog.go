// handlers_catalog.go - Dashboard, workflow, settings and analytics handlers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/autoops-ai/backend/internal/analytics"
	"github.com/autoops-ai/backend/internal/catalog"
	"github.com/autoops-ai/backend/internal/models"
)

const summaryTimeout = 5 * time.Second

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct {
	catalog   *catalog.Catalog
	analytics AnalyticsSource
}

// NewCatalogHandler creates a new catalog handler. analytics may be nil, in
// which case the analytics screen carries no live summary.
func NewCatalogHandler(c *catalog.Catalog, analytics AnalyticsSource) CatalogHandler {
	return &CatalogHandlerImpl{catalog: c, analytics: analytics}
}

type workflowsResponse struct {
	Workflows []models.Workflow `json:"workflows"`
}

type analyticsResponse struct {
	models.AnalyticsView
	Live *analytics.Summary `json:"live,omitempty"`
}

// HandleGetDashboard returns the overview stats and recent activity
func (h *CatalogHandlerImpl) HandleGetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Dashboard)
}

// HandleGetWorkflows returns every configured workflow
func (h *CatalogHandlerImpl) HandleGetWorkflows(c echo.Context) error {
	workflows := h.catalog.Workflows
	if workflows == nil {
		workflows = []models.Workflow{}
	}
	return c.JSON(http.StatusOK, workflowsResponse{Workflows: workflows})
}

// HandleGetWorkflow returns one workflow by ID
func (h *CatalogHandlerImpl) HandleGetWorkflow(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	wf, ok := h.catalog.Workflow(id)
	if !ok {
		return NewNotFoundError("workflow", id)
	}
	return c.JSON(http.StatusOK, wf)
}

// HandleGetSettings returns the settings screen data
func (h *CatalogHandlerImpl) HandleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Settings)
}

// HandleGetAnalytics returns the analytics screen data plus a live summary
// of the documents processed by this instance
func (h *CatalogHandlerImpl) HandleGetAnalytics(c echo.Context) error {
	resp := analyticsResponse{AnalyticsView: h.catalog.Analytics}

	if h.analytics != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), summaryTimeout)
		defer cancel()

		summary, err := h.analytics.Summary(ctx)
		if err != nil {
			if errors.Is(err, analytics.ErrStoreClosed) {
				return NewServiceUnavailableError("analytics store is closed")
			}
			return NewInternalError("failed to summarize documents", err)
		}
		resp.Live = summary
	}

	return c.JSON(http.StatusOK, resp)
}
