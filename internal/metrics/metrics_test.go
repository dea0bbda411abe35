package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
)

type staticSource struct {
	docs    []models.Document
	pending int
}

func (s staticSource) Documents() []models.Document { return s.docs }
func (s staticSource) Pending() int { return s.pending }

func TestObserver_CountsEvents(t *testing.T) {
	obs := Observer()

	submittedBefore := testutil.ToFloat64(documentsSubmittedMetric)
	completed := documentsResolvedMetric.WithLabelValues("completed", "Invoice")
	failed := documentsResolvedMetric.WithLabelValues("error", "Processing...")
	completedBefore := testutil.ToFloat64(completed)
	failedBefore := testutil.ToFloat64(failed)

	obs.OnEvent(ingest.Event{Kind: ingest.EventCreated})
	obs.OnEvent(ingest.Event{Kind: ingest.EventCreated})
	obs.OnEvent(ingest.Event{Kind: ingest.EventCompleted, Document: models.Document{
		Status: models.DocumentStatusCompleted, DocumentType: "Invoice",
	}})
	obs.OnEvent(ingest.Event{Kind: ingest.EventFailed, Document: models.Document{
		Status: models.DocumentStatusError, DocumentType: models.PendingDocumentType,
	}})

	assert.Equal(t, submittedBefore+2, testutil.ToFloat64(documentsSubmittedMetric))
	assert.Equal(t, completedBefore+1, testutil.ToFloat64(completed))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestNotifier_CountsAndForwards(t *testing.T) {
	var got []string
	n := Notifier(ingest.NotifierFunc(func(m string) { got = append(got, m) }))

	before := testutil.ToFloat64(notificationsSentMetric)
	n.Notify("a.pdf processed successfully!")

	assert.Equal(t, []string{"a.pdf processed successfully!"}, got)
	assert.Equal(t, before+1, testutil.ToFloat64(notificationsSentMetric))
}

func TestDocumentStatsCollector(t *testing.T) {
	now := time.Now()
	src := staticSource{
		pending: 1,
		docs: []models.Document{
			{Status: models.DocumentStatusProcessing, DocumentType: models.PendingDocumentType},
			{Status: models.DocumentStatusCompleted, DocumentType: "Invoice", Confidence: 90, CompletedAt: &now},
			{Status: models.DocumentStatusCompleted, DocumentType: "Invoice", Confidence: 100, CompletedAt: &now},
			{Status: models.DocumentStatusError, DocumentType: models.PendingDocumentType, CompletedAt: &now},
		},
	}

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewDocumentStatsCollector(src)))

	expected := `
# HELP document_simulator_collection_average_confidence Average confidence of completed documents.
# TYPE document_simulator_collection_average_confidence gauge
document_simulator_collection_average_confidence 95
# HELP document_simulator_collection_documents Number of documents by status.
# TYPE document_simulator_collection_documents gauge
document_simulator_collection_documents{status="completed"} 2
document_simulator_collection_documents{status="error"} 1
document_simulator_collection_documents{status="processing"} 1
# HELP document_simulator_collection_documents_by_type Number of completed documents by type.
# TYPE document_simulator_collection_documents_by_type gauge
document_simulator_collection_documents_by_type{document_type="Invoice"} 2
# HELP document_simulator_collection_pending_tasks Number of scheduled completions that have not fired.
# TYPE document_simulator_collection_pending_tasks gauge
document_simulator_collection_pending_tasks 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

type statusErr struct{ code int }

func (e statusErr) Error() string { return "status error" }
func (e statusErr) StatusCode() int { return e.code }

func TestMiddleware(t *testing.T) {
	m := NewMiddleware("test")
	e := echo.New()
	e.Use(m.Handler)
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing/:id", func(c echo.Context) error { return statusErr{code: http.StatusNotFound} })

	for _, path := range []string{"/ok", "/ok", "/missing/1"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("200", http.MethodGet, "/ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("404", http.MethodGet, "/missing/:id")))
	assert.Len(t, m.Collectors(), 2)
}
