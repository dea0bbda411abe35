package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/autoops-ai/backend/internal/ingest"
)

const (
	documentSimulator = "document_simulator"

	// Document metrics
	documentsSubmittedTotal = "documents_submitted_total"
	documentsResolvedTotal  = "documents_resolved_total"
	notificationsSentTotal  = "notifications_sent_total"

	// Labels
	statusLabel       = "status"
	documentTypeLabel = "document_type"
)

var documentsResolvedLabels = []string{
	statusLabel,
	documentTypeLabel,
}

/**
* Metrics definition
**/
var documentsSubmittedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: documentSimulator,
		Name:      documentsSubmittedTotal,
		Help:      "number of documents submitted for processing",
	},
)

var documentsResolvedMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: documentSimulator,
		Name:      documentsResolvedTotal,
		Help:      "number of documents that reached a terminal state",
	},
	documentsResolvedLabels,
)

var notificationsSentMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: documentSimulator,
		Name:      notificationsSentTotal,
		Help:      "number of user-facing notifications emitted",
	},
)

func IncreaseDocumentsSubmittedMetric() {
	documentsSubmittedMetric.Inc()
}

func IncreaseDocumentsResolvedMetric(status, documentType string) {
	labels := prometheus.Labels{
		statusLabel:       status,
		documentTypeLabel: documentType,
	}
	documentsResolvedMetric.With(labels).Inc()
}

func IncreaseNotificationsSentMetric() {
	notificationsSentMetric.Inc()
}

// Observer feeds the document counters from simulator events.
func Observer() ingest.Observer {
	return ingest.ObserverFunc(func(e ingest.Event) {
		switch e.Kind {
		case ingest.EventCreated:
			IncreaseDocumentsSubmittedMetric()
		case ingest.EventCompleted, ingest.EventFailed:
			IncreaseDocumentsResolvedMetric(string(e.Document.Status), e.Document.DocumentType)
		}
	})
}

// Notifier wraps next so every notification is counted.
func Notifier(next ingest.Notifier) ingest.Notifier {
	return ingest.NotifierFunc(func(message string) {
		IncreaseNotificationsSentMetric()
		next.Notify(message)
	})
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(documentsSubmittedMetric)
	prometheus.MustRegister(documentsResolvedMetric)
	prometheus.MustRegister(notificationsSentMetric)
}
