package testutil

import (
	"errors"
	"sync"

	"github.com/autoops-ai/backend/internal/models"
)

// MockIngestor is an in-memory stand-in for the simulator used by handler
// tests. Submitted documents stay processing.
type MockIngestor struct {
	mu        sync.RWMutex
	documents []models.Document
	nextID    int

	// SubmitErr, when set, is returned by Submit.
	SubmitErr error
}

// NewMockIngestor creates an empty mock.
func NewMockIngestor() *MockIngestor {
	return &MockIngestor{}
}

func (m *MockIngestor) Submit(files []models.FileDescriptor) ([]models.Document, error) {
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]models.Document, 0, len(files))
	for _, f := range files {
		m.nextID++
		doc := models.Document{
			ID:              generateTestID(m.nextID),
			Name:            f.Name,
			DocumentType:    models.PendingDocumentType,
			Status:          models.DocumentStatusProcessing,
			ExtractedFields: map[string]any{},
			ReceivedAt:      models.ReceivedJustNow,
		}
		m.documents = append([]models.Document{doc}, m.documents...)
		created = append(created, doc)
	}
	return created, nil
}

func (m *MockIngestor) Documents() []models.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Document, len(m.documents))
	copy(out, m.documents)
	return out
}

func (m *MockIngestor) Get(id string) (models.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.documents {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

// Put inserts a document at the front, replacing any with the same ID.
func (m *MockIngestor) Put(doc models.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.documents {
		if d.ID == doc.ID {
			m.documents[i] = doc
			return
		}
	}
	m.documents = append([]models.Document{doc}, m.documents...)
}

// ErrMockClosed mimics a torn-down simulator.
var ErrMockClosed = errors.New("mock ingestor closed")
