package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/autoops-ai/backend/internal/models"
)

// DocumentSource is the read side of the simulator.
type DocumentSource interface {
	Documents() []models.Document
	Pending() int
}

type documentStatsCollector struct {
	source          DocumentSource
	documentsTotal  *prometheus.Desc
	pendingTasks    *prometheus.Desc
	avgConfidence   *prometheus.Desc
	documentsByType *prometheus.Desc
}

// NewDocumentStatsCollector reports the current document collection on scrape.
func NewDocumentStatsCollector(s DocumentSource) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_collection_%s", documentSimulator, name)
	}

	return &documentStatsCollector{
		source: s,
		documentsTotal: prometheus.NewDesc(
			fqName("documents"),
			"Number of documents by status.",
			[]string{statusLabel},
			prometheus.Labels{},
		),
		pendingTasks: prometheus.NewDesc(
			fqName("pending_tasks"),
			"Number of scheduled completions that have not fired.",
			nil,
			prometheus.Labels{},
		),
		avgConfidence: prometheus.NewDesc(
			fqName("average_confidence"),
			"Average confidence of completed documents.",
			nil,
			prometheus.Labels{},
		),
		documentsByType: prometheus.NewDesc(
			fqName("documents_by_type"),
			"Number of completed documents by type.",
			[]string{documentTypeLabel},
			prometheus.Labels{},
		),
	}
}

func (c *documentStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documentsTotal
	ch <- c.pendingTasks
	ch <- c.avgConfidence
	ch <- c.documentsByType
}

// Collect implements Collector.
func (c *documentStatsCollector) Collect(ch chan<- prometheus.Metric) {
	byStatus := map[models.DocumentStatus]int{
		models.DocumentStatusProcessing: 0,
		models.DocumentStatusCompleted:  0,
		models.DocumentStatusError:      0,
	}
	byType := map[string]int{}
	var confidenceSum float64

	for _, doc := range c.source.Documents() {
		byStatus[doc.Status]++
		if doc.Status == models.DocumentStatusCompleted {
			byType[doc.DocumentType]++
			confidenceSum += doc.Confidence
		}
	}

	for status, total := range byStatus {
		ch <- prometheus.MustNewConstMetric(c.documentsTotal, prometheus.GaugeValue, float64(total), string(status))
	}
	ch <- prometheus.MustNewConstMetric(c.pendingTasks, prometheus.GaugeValue, float64(c.source.Pending()))

	avg := 0.0
	if n := byStatus[models.DocumentStatusCompleted]; n > 0 {
		avg = confidenceSum / float64(n)
	}
	ch <- prometheus.MustNewConstMetric(c.avgConfidence, prometheus.GaugeValue, avg)

	for docType, total := range byType {
		ch <- prometheus.MustNewConstMetric(c.documentsByType, prometheus.GaugeValue, float64(total), docType)
	}
}
