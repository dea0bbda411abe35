package ingest

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

// Built-in document categories.
const (
	CategoryInvoice         = "Invoice"
	CategoryContract        = "Contract"
	CategoryCustomerService = "Customer Service"
)

// FieldGenerator produces synthetic extracted fields for a document.
// It must return at least one field.
type FieldGenerator func(rng *rand.Rand) map[string]any

// Classifier maps file names to a document category and its extracted fields.
type Classifier struct {
	Category string
	Keywords []string // whole words, matched case-insensitively against the file name
	Fields   FieldGenerator
}

// Matches reports whether any keyword appears as a whole word of name. Words
// are the letter and digit runs of the name, so "nda" matches "Contract_NDA.pdf"
// but not "agenda.docx". A trailing plural "s" on the name's word is allowed,
// and a multi-word keyword such as "purchase order" must appear contiguously.
func (c Classifier) Matches(name string) bool {
	words := splitWords(name)
	for _, kw := range c.Keywords {
		if containsWords(words, splitWords(kw)) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsWords(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		if wordsMatch(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func wordsMatch(words, phrase []string) bool {
	for i, w := range phrase {
		if words[i] != w && words[i] != w+"s" {
			return false
		}
	}
	return true
}

// Registry holds the classifiers in match order plus a fallback.
type Registry struct {
	classifiers []Classifier
	fallback    Classifier
}

// NewRegistry creates a registry with the built-in categories. Unmatched
// names resolve to Invoice.
func NewRegistry() *Registry {
	invoice := Classifier{
		Category: CategoryInvoice,
		Keywords: []string{"invoice", "bill", "receipt"},
		Fields:   invoiceFields,
	}
	return &Registry{
		classifiers: []Classifier{
			invoice,
			{
				Category: CategoryContract,
				Keywords: []string{"contract", "nda", "agreement"},
				Fields:   contractFields,
			},
			{
				Category: CategoryCustomerService,
				Keywords: []string{"complaint", "customer", "support", "ticket"},
				Fields:   customerServiceFields,
			},
		},
		fallback: invoice,
	}
}

// Register appends a classifier. Earlier classifiers win on overlap.
func (r *Registry) Register(c Classifier) {
	r.classifiers = append(r.classifiers, c)
}

// Resolve returns the first classifier matching name, or the fallback.
func (r *Registry) Resolve(name string) Classifier {
	for _, c := range r.classifiers {
		if c.Matches(name) {
			return c
		}
	}
	return r.fallback
}

// Categories lists the registered categories in match order.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.classifiers))
	for _, c := range r.classifiers {
		out = append(out, c.Category)
	}
	return out
}

func invoiceFields(rng *rand.Rand) map[string]any {
	return map[string]any{
		"vendor":  "Sample Vendor",
		"amount":  fmt.Sprintf("$%.2f", rng.Float64()*10000+1000),
		"dueDate": "2024-02-20",
	}
}

func contractFields(rng *rand.Rand) map[string]any {
	return map[string]any{
		"parties":       "Sample Corp, Partner LLC",
		"effectiveDate": "2024-03-01",
		"termMonths":    12 * (1 + rng.IntN(3)),
	}
}

var priorities = []string{"Low", "Medium", "High"}

func customerServiceFields(rng *rand.Rand) map[string]any {
	return map[string]any{
		"customer": "Sample Customer",
		"issue":    "General Inquiry",
		"priority": priorities[rng.IntN(len(priorities))],
		"category": "Support",
	}
}
