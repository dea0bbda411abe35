// Package testutil provides recording fakes shared by package tests.
package testutil

import (
	"strings"
	"sync"
)

// RecordingNotifier records every message it receives.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

// NewRecordingNotifier creates an empty recorder.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify implements ingest.Notifier.
func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

// Messages returns a copy of the recorded messages in arrival order.
func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}

// Count returns the number of recorded messages.
func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// CountContaining returns how many messages contain substr.
func (n *RecordingNotifier) CountContaining(substr string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			count++
		}
	}
	return count
}
