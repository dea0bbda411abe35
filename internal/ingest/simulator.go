// Package ingest simulates document ingestion: submitted files become
// processing records that complete after a fixed delay with synthetic
// extraction results.
package ingest

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoops-ai/backend/internal/models"
)

// ErrSimulatorClosed is returned by Submit after Close.
var ErrSimulatorClosed = errors.New("simulator closed")

// Default simulation parameters.
const (
	DefaultCompletionDelay = 3 * time.Second
	DefaultConfidenceMin   = 90.0
	DefaultConfidenceMax   = 100.0
)

// Config holds the simulation parameters.
type Config struct {
	CompletionDelay time.Duration
	ConfidenceMin   float64
	ConfidenceMax   float64
}

// DefaultConfig returns the default simulation parameters.
func DefaultConfig() Config {
	return Config{
		CompletionDelay: DefaultCompletionDelay,
		ConfidenceMin:   DefaultConfidenceMin,
		ConfidenceMax:   DefaultConfidenceMax,
	}
}

// Validate checks that the parameters can satisfy the completion invariants.
func (c Config) Validate() error {
	if c.CompletionDelay < 0 {
		return fmt.Errorf("completion delay must not be negative: %s", c.CompletionDelay)
	}
	if c.ConfidenceMin <= 0 || c.ConfidenceMax > 100 || c.ConfidenceMin > c.ConfidenceMax {
		return fmt.Errorf("confidence range must satisfy 0 < min <= max <= 100: [%g, %g]",
			c.ConfidenceMin, c.ConfidenceMax)
	}
	return nil
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(sim *Simulator) { sim.scheduler = s }
}

// WithRand sets the random source used for confidence and field generation.
func WithRand(rng *rand.Rand) Option {
	return func(sim *Simulator) { sim.rng = rng }
}

// WithFailurePolicy sets the policy deciding between completed and error.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(sim *Simulator) { sim.policy = p }
}

// WithNotifier sets the user-facing message sink.
func WithNotifier(n Notifier) Option {
	return func(sim *Simulator) { sim.notifier = n }
}

// WithRegistry replaces the built-in classifier registry.
func WithRegistry(r *Registry) Option {
	return func(sim *Simulator) { sim.registry = r }
}

// WithIDGenerator replaces UUID generation for document IDs.
func WithIDGenerator(gen func() string) Option {
	return func(sim *Simulator) { sim.newID = gen }
}

type observerEntry struct {
	id       int
	observer Observer
}

// Simulator owns the document collection and drives each record from
// processing to a terminal state.
type Simulator struct {
	mu             sync.RWMutex
	documents      []*models.Document // most recent first
	index          map[string]*models.Document
	pending        map[string]Task
	observers      []observerEntry
	nextObserverID int
	closed         bool

	cfg       Config
	scheduler Scheduler
	registry  *Registry
	policy    FailurePolicy
	notifier  Notifier
	rng       *rand.Rand
	newID     func() string
	log       *zap.SugaredLogger
}

// NewSimulator creates a simulator. Without options it uses the wall clock,
// the built-in classifiers and a policy that never fails.
func NewSimulator(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulator config: %w", err)
	}

	sim := &Simulator{
		index:    make(map[string]*models.Document),
		pending:  make(map[string]Task),
		cfg:      cfg,
		registry: NewRegistry(),
		policy:   NeverFail(),
		notifier: noopNotifier{},
		newID:    func() string { return uuid.New().String() },
		log:      zap.S().Named("ingest"),
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.scheduler == nil {
		sim.scheduler = NewRealScheduler()
	}
	if sim.rng == nil {
		sim.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return sim, nil
}

// Submit creates one processing record per file and schedules its
// completion. Files are prepended in batch order, so the last file of the
// batch ends up at the front. It returns copies of the new records in batch
// order.
func (s *Simulator) Submit(files []models.FileDescriptor) ([]models.Document, error) {
	if len(files) == 0 {
		return []models.Document{}, nil
	}

	// The clock is never read under s.mu: fake clocks fire callbacks while
	// holding their own lock.
	now := s.scheduler.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSimulatorClosed
	}
	created := make([]models.Document, 0, len(files))
	for _, f := range files {
		doc := models.NewProcessingDocument(s.newID(), f.Name, now)
		s.documents = slices.Insert(s.documents, 0, doc)
		s.index[doc.ID] = doc
		created = append(created, doc.Clone())
	}
	observers := s.observerSnapshot()
	s.mu.Unlock()

	// Created events go out before any completion is scheduled, so no
	// observer sees a terminal event ahead of its created event.
	for _, doc := range created {
		s.log.Debugw("document submitted", "id", doc.ID, "name", doc.Name)
		s.emit(observers, Event{Kind: EventCreated, Document: doc})
	}

	for i := range created {
		s.schedule(created[i])
	}
	return created, nil
}

func (s *Simulator) schedule(doc models.Document) {
	completedAt := doc.CreatedAt.Add(s.cfg.CompletionDelay)
	task := s.scheduler.Schedule(s.cfg.CompletionDelay, func() {
		s.complete(doc.ID, completedAt)
	})
	if !s.track(doc.ID, task) {
		task.Cancel()
	}
}

// track records a pending task. It reports false when the simulator was
// closed in the meantime. A task that already fired is not tracked.
func (s *Simulator) track(id string, task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if current, ok := s.index[id]; ok && current.Status == models.DocumentStatusProcessing {
		s.pending[id] = task
	}
	return true
}

// Seed appends pre-populated records behind the existing ones without
// scheduling anything. Processing seeds stay processing.
func (s *Simulator) Seed(seeds []models.SeedDocument) error {
	now := s.scheduler.Now()

	docs := make([]*models.Document, 0, len(seeds))
	for i, seed := range seeds {
		doc, err := s.seedDocument(seed, now)
		if err != nil {
			return fmt.Errorf("seed document %d (%s): %w", i, seed.Name, err)
		}
		docs = append(docs, doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		s.documents = append(s.documents, doc)
		s.index[doc.ID] = doc
	}
	return nil
}

func (s *Simulator) seedDocument(seed models.SeedDocument, now time.Time) (*models.Document, error) {
	doc := models.NewProcessingDocument(s.newID(), seed.Name, now)
	if seed.ReceivedAt != "" {
		doc.ReceivedAt = seed.ReceivedAt
	}
	if seed.DocumentType != "" {
		doc.DocumentType = seed.DocumentType
	}

	switch seed.Status {
	case "", models.DocumentStatusProcessing:
	case models.DocumentStatusCompleted:
		if seed.Confidence <= 0 || seed.Confidence > 100 {
			return nil, fmt.Errorf("completed seed needs confidence in (0,100], got %g", seed.Confidence)
		}
		if len(seed.ExtractedFields) == 0 {
			return nil, errors.New("completed seed needs extracted fields")
		}
		doc.Status = models.DocumentStatusCompleted
		doc.Confidence = seed.Confidence
		for k, v := range seed.ExtractedFields {
			doc.ExtractedFields[k] = v
		}
		doc.CompletedAt = &now
	case models.DocumentStatusError:
		doc.Status = models.DocumentStatusError
		doc.Error = "seeded failure"
		doc.CompletedAt = &now
	default:
		return nil, fmt.Errorf("unknown status %q", seed.Status)
	}
	return doc, nil
}

// complete runs once per document when its delay elapses.
func (s *Simulator) complete(id string, completedAt time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("completion callback panicked", "id", id, "panic", r)
		}
	}()

	event, observers, ok := s.transition(id, completedAt)
	if !ok {
		return
	}

	if event.Kind == EventFailed {
		s.log.Warnw("document failed", "id", id, "name", event.Document.Name, "error", event.Document.Error)
	} else {
		s.log.Infow("document processed", "id", id, "name", event.Document.Name,
			"type", event.Document.DocumentType, "confidence", event.Document.Confidence)
	}
	s.notifier.Notify(event.Message)
	s.emit(observers, event)
}

// transition moves a processing document to its terminal state. It reports
// false when there is nothing to do: unknown id, already terminal, or closed.
func (s *Simulator) transition(id string, completedAt time.Time) (Event, []Observer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
	doc, ok := s.index[id]
	if !ok || s.closed || doc.Status != models.DocumentStatusProcessing {
		return Event{}, nil, false
	}

	var event Event
	category, fields, err := s.extract(doc)
	if err != nil {
		doc.Status = models.DocumentStatusError
		doc.Confidence = 0
		clear(doc.ExtractedFields)
		doc.Error = err.Error()
		event = Event{Kind: EventFailed, Message: fmt.Sprintf("%s failed to process: %v", doc.Name, err)}
	} else {
		doc.Status = models.DocumentStatusCompleted
		doc.DocumentType = category
		doc.Confidence = s.drawConfidence()
		doc.ExtractedFields = fields
		event = Event{Kind: EventCompleted, Message: fmt.Sprintf("%s processed successfully!", doc.Name)}
	}
	doc.CompletedAt = &completedAt
	event.Document = doc.Clone()
	return event, s.observerSnapshot(), true
}

// extract applies the failure policy and generates the synthetic fields.
// Panics from policies or generators become errors. Caller holds s.mu.
func (s *Simulator) extract(doc *models.Document) (category string, fields map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()

	if err := s.policy.Evaluate(doc.Clone(), s.rng); err != nil {
		return "", nil, err
	}
	c := s.registry.Resolve(doc.Name)
	fields = c.Fields(s.rng)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields extracted for category %s", c.Category)
	}
	return c.Category, fields, nil
}

// drawConfidence returns a value in [min, max). Caller holds s.mu.
func (s *Simulator) drawConfidence() float64 {
	return s.cfg.ConfidenceMin + s.rng.Float64()*(s.cfg.ConfidenceMax-s.cfg.ConfidenceMin)
}

// Documents returns copies of all records, most recent first.
func (s *Simulator) Documents() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		out = append(out, doc.Clone())
	}
	return out
}

// Get returns a copy of the record with the given ID.
func (s *Simulator) Get(id string) (models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.index[id]
	if !ok {
		return models.Document{}, false
	}
	return doc.Clone(), true
}

// Pending returns the number of scheduled completions that have not fired.
func (s *Simulator) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Subscribe registers an observer. Observers are called in registration
// order, outside the simulator lock. The returned function unsubscribes.
func (s *Simulator) Subscribe(o Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObserverID
	s.nextObserverID++
	s.observers = append(s.observers, observerEntry{id: id, observer: o})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool { return e.id == id })
		})
	}
}

// observerSnapshot copies the observer list. Caller holds s.mu.
func (s *Simulator) observerSnapshot() []Observer {
	out := make([]Observer, len(s.observers))
	for i, e := range s.observers {
		out[i] = e.observer
	}
	return out
}

func (s *Simulator) emit(observers []Observer, e Event) {
	for _, o := range observers {
		o.OnEvent(e)
	}
}

// Close cancels every pending completion. Records already created stay in
// their current state. Close is idempotent.
func (s *Simulator) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	tasks := make([]Task, 0, len(s.pending))
	for id, task := range s.pending {
		tasks = append(tasks, task)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	cancelled := 0
	for _, task := range tasks {
		if task.Cancel() {
			cancelled++
		}
	}
	s.log.Infow("simulator closed", "cancelled", cancelled)
	return nil
}
