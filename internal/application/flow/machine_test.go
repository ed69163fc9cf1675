package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

func TestMachine_LegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   entities.Step
		target entities.Step
	}{
		{"expectations to rating", entities.StepExpectations, entities.StepRating},
		{"expectations to reason", entities.StepExpectations, entities.StepReason},
		{"expectations to comment", entities.StepExpectations, entities.StepComment},
		{"rating to reason", entities.StepRating, entities.StepReason},
		{"rating to identifier", entities.StepRating, entities.StepIdentifier},
		{"rating to finalized", entities.StepRating, entities.StepFinalized},
		{"reason to comment", entities.StepReason, entities.StepComment},
		{"comment to identifier", entities.StepComment, entities.StepIdentifier},
		{"comment to finalized", entities.StepComment, entities.StepFinalized},
		{"identifier to finalized", entities.StepIdentifier, entities.StepFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.from)
			require.NoError(t, m.Advance(context.Background(), tt.target))
			assert.Equal(t, tt.target, m.Step())
		})
	}
}

func TestMachine_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   entities.Step
		target entities.Step
	}{
		{"expectations cannot finalize", entities.StepExpectations, entities.StepFinalized},
		{"expectations cannot skip to identifier", entities.StepExpectations, entities.StepIdentifier},
		{"reason cannot finalize", entities.StepReason, entities.StepFinalized},
		{"reason cannot go back to rating", entities.StepReason, entities.StepRating},
		{"identifier cannot revisit comment", entities.StepIdentifier, entities.StepComment},
		{"comment cannot revisit reason", entities.StepComment, entities.StepReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.from)
			assert.Error(t, m.Advance(context.Background(), tt.target))
			assert.Equal(t, tt.from, m.Step())
		})
	}
}

func TestMachine_RestartFromEveryStep(t *testing.T) {
	steps := []entities.Step{
		entities.StepExpectations,
		entities.StepRating,
		entities.StepReason,
		entities.StepComment,
		entities.StepIdentifier,
		entities.StepFinalized,
	}

	for _, step := range steps {
		t.Run(string(step), func(t *testing.T) {
			m := NewMachine(step)
			require.NoError(t, m.Restart(context.Background()))
			assert.Equal(t, entities.StepExpectations, m.Step())
		})
	}
}

func TestMachine_UnknownTargetRejected(t *testing.T) {
	m := NewMachine(entities.StepExpectations)
	assert.Error(t, m.Advance(context.Background(), entities.Step("nowhere")))
}
