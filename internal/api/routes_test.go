package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/autoops-ai/backend/internal/analytics"
	"github.com/autoops-ai/backend/internal/catalog"
	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
	"github.com/autoops-ai/backend/internal/testutil"
)

type routesFixture struct {
	e        *echo.Echo
	sim      *ingest.Simulator
	clock    *testingclock.FakeClock
	notifier *testutil.RecordingNotifier
	store    *analytics.Store
}

func newRoutesFixture(t *testing.T) *routesFixture {
	t.Helper()

	clk := testingclock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	notifier := testutil.NewRecordingNotifier()
	sim, err := ingest.NewSimulator(ingest.DefaultConfig(),
		ingest.WithScheduler(ingest.NewClockScheduler(clk)),
		ingest.WithNotifier(notifier),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })

	store, err := analytics.NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	sim.Subscribe(store.Observer())

	cat, err := catalog.Default()
	require.NoError(t, err)
	require.NoError(t, sim.Seed(cat.SeedDocuments))
	_, err = store.Backfill(context.Background(), sim.Documents())
	require.NoError(t, err)

	e := echo.New()
	SetupMiddleware(e, MiddlewareOptions{EnableCORS: true, AllowOrigins: "*", BodyLimit: "1M"})
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Ingestor:  sim,
		Catalog:   cat,
		Analytics: store,
		Hub:       NewNotificationHub(),
		Version:   "test",
	}))

	return &routesFixture{e: e, sim: sim, clock: clk, notifier: notifier, store: store}
}

func (f *routesFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_DocumentLifecycle(t *testing.T) {
	f := newRoutesFixture(t)

	rec := f.do(http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing documentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Documents, 3)
	assert.Equal(t, "Invoice_ABC_Corp_2024.pdf", listing.Documents[0].Name)

	rec = f.do(http.MethodPost, "/api/documents", `{"files":[{"name":"Invoice_Q1.pdf"}]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created documentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Documents, 1)
	id := created.Documents[0].ID

	rec = f.do(http.MethodGet, "/api/documents", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Documents, 4)
	assert.Equal(t, id, listing.Documents[0].ID)
	assert.Equal(t, models.DocumentStatusProcessing, listing.Documents[0].Status)

	f.clock.Step(ingest.DefaultCompletionDelay)
	require.Eventually(t, func() bool {
		sum, err := f.store.Summary(context.Background())
		return err == nil && sum.Completed == 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Invoice_Q1.pdf processed successfully!"}, f.notifier.Messages())

	rec = f.do(http.MethodGet, "/api/documents/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, models.DocumentStatusCompleted, doc.Status)
	assert.Equal(t, "Invoice", doc.DocumentType)
	assert.GreaterOrEqual(t, doc.Confidence, 90.0)
	assert.Equal(t, "Sample Vendor", doc.ExtractedFields["vendor"])

	rec = f.do(http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Live)
	assert.Equal(t, 3, resp.Live.Completed)

	rec = f.do(http.MethodGet, "/api/health", "")
	assert.JSONEq(t, `{"status":"ok","version":"test","documents":4,"processing":1}`, rec.Body.String())
}

func TestRoutes_AnalyticsIncludesSeededDocuments(t *testing.T) {
	f := newRoutesFixture(t)

	rec := f.do(http.MethodGet, "/api/documents?status=completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing documentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))

	rec = f.do(http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Live)

	assert.Equal(t, 2, listing.Total)
	assert.Equal(t, listing.Total, resp.Live.Completed)
	assert.Equal(t, listing.Total, resp.Live.Total)
}

func TestRoutes_ErrorsRenderAsJSON(t *testing.T) {
	f := newRoutesFixture(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"empty batch", http.MethodPost, "/api/documents", `{"files":[]}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown document", http.MethodGet, "/api/documents/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown workflow", http.MethodGet, "/api/workflows/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", http.MethodGet, "/api/nothing", "", http.StatusNotFound, "HTTP_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestRoutes_SubmitAfterClose(t *testing.T) {
	f := newRoutesFixture(t)
	require.NoError(t, f.sim.Close())

	rec := f.do(http.MethodPost, "/api/documents", `{"files":[{"name":"late.pdf"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutes_CatalogEndpoints(t *testing.T) {
	f := newRoutesFixture(t)

	for _, path := range []string{"/api/dashboard", "/api/workflows", "/api/workflows/1", "/api/settings", "/api/documents/msgpack"} {
		t.Run(path, func(t *testing.T) {
			rec := f.do(http.MethodGet, path, "")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
