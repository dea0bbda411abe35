package ingest

import (
	"errors"
	"math/rand/v2"

	"github.com/autoops-ai/backend/internal/models"
)

// ErrSimulatedFailure is returned by probabilistic failure policies.
var ErrSimulatedFailure = errors.New("simulated extraction failure")

// FailurePolicy decides whether a due document resolves to error instead of
// completed. A nil return means the document completes.
type FailurePolicy interface {
	Evaluate(doc models.Document, rng *rand.Rand) error
}

// FailurePolicyFunc adapts a function to FailurePolicy.
type FailurePolicyFunc func(doc models.Document, rng *rand.Rand) error

func (f FailurePolicyFunc) Evaluate(doc models.Document, rng *rand.Rand) error {
	return f(doc, rng)
}

// NeverFail is the default policy: every document completes.
func NeverFail() FailurePolicy {
	return FailurePolicyFunc(func(models.Document, *rand.Rand) error { return nil })
}

// FailWithProbability fails each document independently with probability p.
// p <= 0 never fails and p >= 1 always fails.
func FailWithProbability(p float64) FailurePolicy {
	if p <= 0 {
		return NeverFail()
	}
	return FailurePolicyFunc(func(_ models.Document, rng *rand.Rand) error {
		if p >= 1 || rng.Float64() < p {
			return ErrSimulatedFailure
		}
		return nil
	})
}
