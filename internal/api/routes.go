// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/autoops-ai/backend/internal/catalog"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Ingestor  Ingestor
	Catalog   *catalog.Catalog
	Analytics AnalyticsSource // optional
	Hub       *NotificationHub
	Version   string
}

// Handlers holds all handler instances
type Handlers struct {
	Health        HealthHandler
	Documents     DocumentHandler
	Catalog       CatalogHandler
	Notifications NotificationHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Ingestor),
		Documents: NewDocumentHandler(deps.Ingestor),
		Catalog:   NewCatalogHandler(deps.Catalog, deps.Analytics),
	}
	if deps.Hub != nil {
		h.Notifications = deps.Hub
	}
	return h
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Document routes
	docGroup := apiGroup.Group("/documents")
	docGroup.POST("", handlers.Documents.HandleSubmitDocuments)
	docGroup.POST("/upload", handlers.Documents.HandleUploadDocuments)
	docGroup.GET("", handlers.Documents.HandleListDocuments)
	docGroup.GET("/msgpack", handlers.Documents.HandleListDocumentsMsgpack)
	docGroup.GET("/:id", handlers.Documents.HandleGetDocument)

	// Catalog routes
	apiGroup.GET("/dashboard", handlers.Catalog.HandleGetDashboard)
	apiGroup.GET("/workflows", handlers.Catalog.HandleGetWorkflows)
	apiGroup.GET("/workflows/:id", handlers.Catalog.HandleGetWorkflow)
	apiGroup.GET("/settings", handlers.Catalog.HandleGetSettings)
	apiGroup.GET("/analytics", handlers.Catalog.HandleGetAnalytics)

	RegisterWebSocketRoutes(e, handlers)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	if handlers.Notifications == nil {
		return
	}
	e.GET("/api/ws/notifications", handlers.Notifications.HandleNotifications)
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	EnableCORS   bool
	AllowOrigins string // comma separated, "*" for any
	BodyLimit    string
	ShowDetails  bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = NewErrorHandler(opts.ShowDetails)
	e.Validator = NewRequestValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := strings.Split(opts.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
