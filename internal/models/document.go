// Package models contains domain types for the document automation dashboard.
package models

import (
	"maps"
	"time"
)

// DocumentStatus represents the lifecycle state of a document record.
type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusError      DocumentStatus = "error"
)

// IsTerminal reports whether no further transition can happen from s.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusError
}

// PendingDocumentType is the placeholder type shown until a document is classified.
const PendingDocumentType = "Processing..."

// ReceivedJustNow is the relative-time label given to freshly submitted documents.
const ReceivedJustNow = "Just now"

// FileDescriptor describes a selected file. Only the name matters to the simulator.
type FileDescriptor struct {
	Name string `json:"name" msgpack:"name" validate:"required"`
}

// Document is a single simulated ingestion record.
type Document struct {
	ID              string         `json:"id" msgpack:"id"`
	Name            string         `json:"name" msgpack:"name"`
	DocumentType    string         `json:"documentType" msgpack:"documentType"`
	Status          DocumentStatus `json:"status" msgpack:"status"`
	Confidence      float64        `json:"confidence" msgpack:"confidence"` // 0-100
	ExtractedFields map[string]any `json:"extractedFields" msgpack:"extractedFields"`
	ReceivedAt      string         `json:"receivedAt" msgpack:"receivedAt"` // display label
	CreatedAt       time.Time      `json:"createdAt" msgpack:"createdAt"`
	CompletedAt     *time.Time     `json:"completedAt,omitempty" msgpack:"completedAt,omitempty"`
	Error           string         `json:"error,omitempty" msgpack:"error,omitempty"`
}

// NewProcessingDocument creates a document in processing status.
func NewProcessingDocument(id, name string, createdAt time.Time) *Document {
	return &Document{
		ID:              id,
		Name:            name,
		DocumentType:    PendingDocumentType,
		Status:          DocumentStatusProcessing,
		Confidence:      0,
		ExtractedFields: make(map[string]any),
		ReceivedAt:      ReceivedJustNow,
		CreatedAt:       createdAt,
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() Document {
	out := *d
	out.ExtractedFields = make(map[string]any, len(d.ExtractedFields))
	maps.Copy(out.ExtractedFields, d.ExtractedFields)
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
