package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func completedDoc(id, docType string, confidence float64, at time.Time) models.Document {
	return models.Document{
		ID:              id,
		Name:            id + ".pdf",
		DocumentType:    docType,
		Status:          models.DocumentStatusCompleted,
		Confidence:      confidence,
		ExtractedFields: map[string]any{"k": "v"},
		CompletedAt:     &at,
	}
}

func TestStore_EmptySummary(t *testing.T) {
	s := newTestStore(t)

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.Zero(t, sum.AvgConfidence)
	assert.Empty(t, sum.ByType)
	assert.Nil(t, sum.LastCompleted)
}

func TestStore_RecordAndSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, completedDoc("a", "Invoice", 90, base)))
	require.NoError(t, s.Record(ctx, completedDoc("b", "Invoice", 100, base.Add(time.Minute))))
	require.NoError(t, s.Record(ctx, completedDoc("c", "Contract", 95, base.Add(2*time.Minute))))
	failedAt := base.Add(3 * time.Minute)
	require.NoError(t, s.Record(ctx, models.Document{
		ID:           "d",
		Name:         "d.pdf",
		DocumentType: models.PendingDocumentType,
		Status:       models.DocumentStatusError,
		CompletedAt:  &failedAt,
		Error:        "boom",
	}))

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 3, sum.Completed)
	assert.Equal(t, 1, sum.Failed)
	assert.InDelta(t, 95.0, sum.AvgConfidence, 0.0001)
	require.NotNil(t, sum.LastCompleted)
	assert.True(t, base.Add(2*time.Minute).Equal(*sum.LastCompleted))

	require.Len(t, sum.ByType, 2)
	assert.Equal(t, TypeCount{DocumentType: "Invoice", Count: 2, AvgConfidence: 95}, sum.ByType[0])
	assert.Equal(t, "Contract", sum.ByType[1].DocumentType)
}

func TestStore_RecordReplacesSameID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Record(ctx, completedDoc("a", "Invoice", 91, now)))
	require.NoError(t, s.Record(ctx, completedDoc("a", "Invoice", 99, now)))

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.InDelta(t, 99.0, sum.AvgConfidence, 0.0001)
}

func TestStore_RejectsProcessing(t *testing.T) {
	s := newTestStore(t)

	err := s.Record(context.Background(), models.Document{ID: "p", Status: models.DocumentStatusProcessing})
	assert.ErrorIs(t, err, ErrNotTerminal)
}

func TestStore_Observer(t *testing.T) {
	s := newTestStore(t)
	obs := s.Observer()
	now := time.Now()

	obs.OnEvent(ingest.Event{Kind: ingest.EventCreated, Document: models.Document{
		ID: "x", Status: models.DocumentStatusProcessing,
	}})
	obs.OnEvent(ingest.Event{Kind: ingest.EventCompleted, Document: completedDoc("y", "Contract", 97, now)})

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.ByStatus["completed"])
}

func TestStore_Close(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Summary(context.Background())
	assert.ErrorIs(t, err, ErrStoreClosed)
	err = s.Record(context.Background(), completedDoc("a", "Invoice", 95, time.Now()))
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestStore_BackfillSkipsProcessing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	docs := []models.Document{
		completedDoc("a", "Invoice", 98, at),
		*models.NewProcessingDocument("b", "b.pdf", at),
		completedDoc("c", "Customer Service", 96, at),
	}
	n, err := s.Backfill(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 2, sum.Completed)

	require.NoError(t, s.Close())
	_, err = s.Backfill(ctx, docs)
	assert.ErrorIs(t, err, ErrStoreClosed)
}
