// Package analytics keeps terminal document records in an in-memory DuckDB
// table and aggregates them for the analytics screen.
package analytics

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/models"
)

// ErrNotTerminal is returned when recording a document that is still processing.
var ErrNotTerminal = errors.New("document is not in a terminal state")

// ErrStoreClosed is returned by operations after Close.
var ErrStoreClosed = errors.New("analytics store closed")

// TypeCount is the number of completed documents of one type.
type TypeCount struct {
	DocumentType  string  `json:"documentType"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avgConfidence"`
}

// Summary aggregates every recorded document.
type Summary struct {
	Total         int            `json:"total"`
	Completed     int            `json:"completed"`
	Failed        int            `json:"failed"`
	AvgConfidence float64        `json:"avgConfidence"` // completed documents only
	ByType        []TypeCount    `json:"byType"`
	LastCompleted *time.Time     `json:"lastCompleted,omitempty"`
	ByStatus      map[string]int `json:"byStatus"`
}

// Store is a DuckDB-backed table of terminal document records.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	log    *zap.SugaredLogger
}

// NewStore opens an in-memory DuckDB database and creates the documents table.
func NewStore() (*Store, error) {
	log := zap.S().Named("analytics")

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	// One connection: writes are serialized.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE documents (
			id            VARCHAR PRIMARY KEY,
			name          VARCHAR NOT NULL,
			document_type VARCHAR NOT NULL,
			status        VARCHAR NOT NULL,
			confidence    DOUBLE NOT NULL,
			completed_at  TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	log.Debug("analytics store ready")
	return &Store{db: db, log: log}, nil
}

// Record inserts a terminal document. Recording the same ID twice keeps the
// latest values.
func (s *Store) Record(ctx context.Context, doc models.Document) error {
	if !doc.Status.IsTerminal() {
		return fmt.Errorf("record %s: %w", doc.ID, ErrNotTerminal)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	var completedAt any
	if doc.CompletedAt != nil {
		completedAt = doc.CompletedAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (id, name, document_type, status, confidence, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Name, doc.DocumentType, string(doc.Status), doc.Confidence, completedAt)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}
	return nil
}

// Backfill records the terminal documents of docs and skips the rest. It is
// used for records that entered the simulator without events, such as seeds.
// It returns how many documents were recorded.
func (s *Store) Backfill(ctx context.Context, docs []models.Document) (int, error) {
	n := 0
	for _, doc := range docs {
		if !doc.Status.IsTerminal() {
			continue
		}
		if err := s.Record(ctx, doc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Summary aggregates the recorded documents.
func (s *Store) Summary(ctx context.Context) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	sum := &Summary{ByStatus: map[string]int{}, ByType: []TypeCount{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		sum.ByStatus[status] = n
		sum.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sum.Completed = sum.ByStatus[string(models.DocumentStatusCompleted)]
	sum.Failed = sum.ByStatus[string(models.DocumentStatusError)]

	var avg sql.NullFloat64
	var last sql.NullTime
	err = s.db.QueryRowContext(ctx, `
		SELECT AVG(confidence), MAX(completed_at)
		FROM documents
		WHERE status = ?
	`, string(models.DocumentStatusCompleted)).Scan(&avg, &last)
	if err != nil {
		return nil, fmt.Errorf("average confidence: %w", err)
	}
	if avg.Valid {
		sum.AvgConfidence = avg.Float64
	}
	if last.Valid {
		t := last.Time.UTC()
		sum.LastCompleted = &t
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT document_type, COUNT(*), AVG(confidence)
		FROM documents
		WHERE status = ?
		GROUP BY document_type
		ORDER BY COUNT(*) DESC, document_type
	`, string(models.DocumentStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.DocumentType, &tc.Count, &tc.AvgConfidence); err != nil {
			return nil, err
		}
		sum.ByType = append(sum.ByType, tc)
	}
	return sum, rows.Err()
}

// Observer returns an ingest observer that records every terminal event.
func (s *Store) Observer() ingest.Observer {
	return ingest.ObserverFunc(func(e ingest.Event) {
		if e.Kind == ingest.EventCreated {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Record(ctx, e.Document); err != nil {
			s.log.Warnw("failed to record document", "id", e.Document.ID, "error", err)
		}
	})
}

// Close releases the database. It is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
