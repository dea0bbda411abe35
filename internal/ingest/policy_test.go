package ingest

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autoops-ai/backend/internal/models"
)

func TestFailWithProbability(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	doc := models.Document{Name: "a.pdf"}

	t.Run("zero never fails", func(t *testing.T) {
		p := FailWithProbability(0)
		for range 100 {
			assert.NoError(t, p.Evaluate(doc, rng))
		}
	})

	t.Run("one always fails", func(t *testing.T) {
		p := FailWithProbability(1)
		for range 100 {
			assert.ErrorIs(t, p.Evaluate(doc, rng), ErrSimulatedFailure)
		}
	})

	t.Run("half fails sometimes", func(t *testing.T) {
		p := FailWithProbability(0.5)
		failures := 0
		for range 1000 {
			if p.Evaluate(doc, rng) != nil {
				failures++
			}
		}
		assert.InDelta(t, 500, failures, 100)
	})
}

func TestNeverFail(t *testing.T) {
	assert.NoError(t, NeverFail().Evaluate(models.Document{}, nil))
}
