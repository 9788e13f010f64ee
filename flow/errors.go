package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrFlowExecute is returned when Execute is called on a flow.
	ErrFlowExecute = errors.New("flow can't execute")
	// ErrNotSequence is returned when a batch unit's prepare step does not yield a slice.
	ErrNotSequence = errors.New("batch prepare result is not a sequence")
	// ErrInvalidBatchParams is returned when a batch flow's prepare step does not yield a list of params.
	ErrInvalidBatchParams = errors.New("batch flow prepare result is not a list of params")
	// ErrInvalidAction is recorded when a successor is registered under an empty label.
	ErrInvalidAction = errors.New("invalid action label")
	// ErrNilSuccessor is recorded when a nil successor is registered.
	ErrNilSuccessor = errors.New("nil successor")
	// ErrSuccessorOverwrite reports a label registered twice.
	ErrSuccessorOverwrite = errors.New("overwriting successor")
	// ErrUnmatchedAction reports a flow ending on an action no successor matched.
	ErrUnmatchedAction = errors.New("action matched no successor")
	// ErrDetachedRun reports Run called on a unit with successors.
	ErrDetachedRun = errors.New("node won't run successors, use a Flow")
)

// Phase names a lifecycle step.
type Phase string

const (
	PhasePrepare     Phase = "prepare"
	PhaseExecute     Phase = "execute"
	PhasePostprocess Phase = "postprocess"
)

// StepError locates a failure: which unit and which lifecycle step.
type StepError struct {
	Node  string
	Phase Phase
	Err   error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Node, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

func newStepError(node string, phase Phase, err error) error {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return err
	}
	return &StepError{Node: node, Phase: phase, Err: err}
}
