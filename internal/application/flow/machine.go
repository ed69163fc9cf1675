package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

// Transition events. The engine decides the target step from the decision
// table; the machine enforces that the transition is legal from the current
// step.
const (
	eventCollectRating     = "collect_rating"
	eventCollectReason     = "collect_reason"
	eventCollectComment    = "collect_comment"
	eventCollectIdentifier = "collect_identifier"
	eventFinalize          = "finalize"
	eventRestart           = "restart"
)

var allSteps = []string{
	string(entities.StepExpectations),
	string(entities.StepRating),
	string(entities.StepReason),
	string(entities.StepComment),
	string(entities.StepIdentifier),
	string(entities.StepFinalized),
}

// Machine guards step transitions for one conversation.
type Machine struct {
	fsm *fsm.FSM
}

// NewMachine builds the transition table positioned at the current step.
func NewMachine(current entities.Step) *Machine {
	events := fsm.Events{
		{
			Name: eventCollectRating,
			Src:  []string{string(entities.StepExpectations)},
			Dst:  string(entities.StepRating),
		},
		{
			Name: eventCollectReason,
			Src:  []string{string(entities.StepExpectations), string(entities.StepRating)},
			Dst:  string(entities.StepReason),
		},
		{
			Name: eventCollectComment,
			Src:  []string{string(entities.StepExpectations), string(entities.StepReason)},
			Dst:  string(entities.StepComment),
		},
		{
			Name: eventCollectIdentifier,
			Src:  []string{string(entities.StepRating), string(entities.StepComment)},
			Dst:  string(entities.StepIdentifier),
		},
		{
			Name: eventFinalize,
			Src:  []string{string(entities.StepRating), string(entities.StepComment), string(entities.StepIdentifier)},
			Dst:  string(entities.StepFinalized),
		},
		{
			Name: eventRestart,
			Src:  allSteps,
			Dst:  string(entities.StepExpectations),
		},
	}
	return &Machine{fsm: fsm.NewFSM(string(current), events, fsm.Callbacks{})}
}

var stepEvents = map[entities.Step]string{
	entities.StepRating:       eventCollectRating,
	entities.StepReason:       eventCollectReason,
	entities.StepComment:      eventCollectComment,
	entities.StepIdentifier:   eventCollectIdentifier,
	entities.StepFinalized:    eventFinalize,
	entities.StepExpectations: eventRestart,
}

// Advance moves the machine to the target step, failing when the decision
// table does not allow it from the current step.
func (m *Machine) Advance(ctx context.Context, target entities.Step) error {
	event, ok := stepEvents[target]
	if !ok {
		return fmt.Errorf("no transition targets step %q", target)
	}
	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("illegal transition %s -> %s: %w", m.fsm.Current(), target, err)
	}
	return nil
}

// Restart unconditionally resets the machine to the initial step.
func (m *Machine) Restart(ctx context.Context) error {
	err := m.fsm.Event(ctx, eventRestart)
	// Restarting from the initial step is a no-op, not a failure.
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}

// Step returns the machine's current step.
func (m *Machine) Step() entities.Step {
	return entities.Step(m.fsm.Current())
}
