// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autoops-ai/backend/internal/models"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	ingestor Ingestor
}

// NewHealthHandler creates a new health handler. ingestor may be nil.
func NewHealthHandler(version string, ingestor Ingestor) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		ingestor: ingestor,
	}
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Documents  int    `json:"documents"`
	Processing int    `json:"processing"`
}

// HandleHealth returns server health status with document counts
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Version: h.version}
	if h.ingestor != nil {
		for _, d := range h.ingestor.Documents() {
			resp.Documents++
			if d.Status == models.DocumentStatusProcessing {
				resp.Processing++
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}
