// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/autoops-ai/backend/internal/analytics"
	"github.com/autoops-ai/backend/internal/models"
)

// DocumentHandler handles document submission and listing
type DocumentHandler interface {
	HandleSubmitDocuments(c echo.Context) error
	HandleUploadDocuments(c echo.Context) error
	HandleListDocuments(c echo.Context) error
	HandleListDocumentsMsgpack(c echo.Context) error
	HandleGetDocument(c echo.Context) error
}

// CatalogHandler serves the static screen data
type CatalogHandler interface {
	HandleGetDashboard(c echo.Context) error
	HandleGetWorkflows(c echo.Context) error
	HandleGetWorkflow(c echo.Context) error
	HandleGetSettings(c echo.Context) error
	HandleGetAnalytics(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// NotificationHandler streams document events to browsers
type NotificationHandler interface {
	HandleNotifications(c echo.Context) error
}

// Ingestor is the document simulator as seen by the handlers.
// This allows mocking in tests
type Ingestor interface {
	Submit(files []models.FileDescriptor) ([]models.Document, error)
	Documents() []models.Document
	Get(id string) (models.Document, bool)
}

// AnalyticsSource aggregates recorded documents
type AnalyticsSource interface {
	Summary(ctx context.Context) (*analytics.Summary, error)
}
