// handlers_documents.go - Document submission and listing handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
)

// MIMEApplicationMsgpack is the content type of msgpack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	ingestor  Ingestor
	validator *RequestValidator
}

// NewDocumentHandler creates a new document handler instance
func NewDocumentHandler(ingestor Ingestor) DocumentHandler {
	return &DocumentHandlerImpl{ingestor: ingestor, validator: NewRequestValidator()}
}

type submitDocumentsRequest struct {
	Files []models.FileDescriptor `json:"files" validate:"min=1,dive"`
}

type documentsResponse struct {
	Documents []models.Document `json:"documents" msgpack:"documents"`
	Total     int               `json:"total" msgpack:"total"`
}

// HandleSubmitDocuments accepts a JSON list of file names
func (h *DocumentHandlerImpl) HandleSubmitDocuments(c echo.Context) error {
	var req submitDocumentsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := h.validator.Validate(&req); err != nil {
		return err
	}

	return h.submit(c, req.Files)
}

// HandleUploadDocuments accepts multipart "files" fields. Only the file names
// are used; contents are discarded.
func (h *DocumentHandlerImpl) HandleUploadDocuments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	defer form.RemoveAll()

	headers := form.File["files"]
	req := submitDocumentsRequest{Files: make([]models.FileDescriptor, 0, len(headers))}
	for _, fh := range headers {
		req.Files = append(req.Files, models.FileDescriptor{Name: fh.Filename})
	}
	if err := h.validator.Validate(&req); err != nil {
		return err
	}

	return h.submit(c, req.Files)
}

func (h *DocumentHandlerImpl) submit(c echo.Context, files []models.FileDescriptor) error {
	created, err := h.ingestor.Submit(files)
	if err != nil {
		if errors.Is(err, ingest.ErrSimulatorClosed) {
			return NewServiceUnavailableError("document processing is shutting down")
		}
		return NewInternalError("failed to submit documents", err)
	}

	return c.JSON(http.StatusAccepted, documentsResponse{Documents: created, Total: len(created)})
}

// HandleListDocuments returns every document, most recent first.
// An optional ?status= query filters by lifecycle state.
func (h *DocumentHandlerImpl) HandleListDocuments(c echo.Context) error {
	docs, err := h.listDocuments(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, documentsResponse{Documents: docs, Total: len(docs)})
}

// HandleListDocumentsMsgpack returns the same listing msgpack-encoded
func (h *DocumentHandlerImpl) HandleListDocumentsMsgpack(c echo.Context) error {
	docs, err := h.listDocuments(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(documentsResponse{Documents: docs, Total: len(docs)})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, data)
}

func (h *DocumentHandlerImpl) listDocuments(c echo.Context) ([]models.Document, error) {
	docs := h.ingestor.Documents()

	status := models.DocumentStatus(c.QueryParam("status"))
	if status == "" {
		return docs, nil
	}
	if err := h.validator.Var("status", string(status), "document_status"); err != nil {
		return nil, err
	}

	filtered := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.Status == status {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// HandleGetDocument returns a single document by ID
func (h *DocumentHandlerImpl) HandleGetDocument(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	doc, ok := h.ingestor.Get(id)
	if !ok {
		return NewNotFoundError("document", id)
	}

	return c.JSON(http.StatusOK, doc)
}
