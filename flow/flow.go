package flow

import (
	"context"
	"fmt"

	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/event"
	"github.com/viant/pocketflow/tracing"
	"go.uber.org/zap"
)

// Flow walks a graph of units from its start unit, following the action
// returned by each unit until no successor matches. A Flow is a Unit itself,
// so flows nest.
type Flow struct {
	base
	start Unit
}

// NewFlow creates a flow starting at start. Use WithBehaviour to supply the
// flow's own prepare and postprocess steps.
func NewFlow(start Unit, opts ...Option) *Flow {
	ret := &Flow{start: start}
	ret.initFlow(KindFlow, nil, opts)
	return ret
}

func (f *Flow) initFlow(kind string, behaviour interface{}, opts []Option) {
	f.init(kind, behaviour, opts)
	if IsNil(f.start) {
		f.record(fmt.Errorf("%w: %s has no start unit", ErrNilSuccessor, f.name))
	}
}

// Start returns the entry unit.
func (f *Flow) Start() Unit {
	return f.start
}

// Execute always fails: a flow only drives its graph.
func (f *Flow) Execute(ctx context.Context, prep interface{}) (interface{}, error) {
	return nil, fmt.Errorf("%w: %s", ErrFlowExecute, f.name)
}

// Run walks the graph and returns the action of the flow's own postprocess
// step; the last unit's action is discarded.
func (f *Flow) Run(ctx context.Context, shared interface{}) (Action, error) {
	return run(ctx, f, &f.base, shared)
}

// RunWithParams runs the flow with override merged over its own params;
// override wins on conflicting keys.
func (f *Flow) RunWithParams(ctx context.Context, shared interface{}, override Params) (Action, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := preflight(ctx, f, &f.base); err != nil {
		return "", err
	}
	return f.runWith(ctx, shared, override)
}

func (f *Flow) lifecycle(ctx context.Context, shared interface{}) (Action, error) {
	return f.runWith(ctx, shared, nil)
}

func (f *Flow) runWith(ctx context.Context, shared interface{}, override Params) (Action, error) {
	return f.traced(ctx, func(ctx context.Context) (Action, error) {
		params := f.Params().Merge(override)
		prep, err := f.prepare(ctx, shared, params)
		if err != nil {
			return "", newStepError(f.name, PhasePrepare, err)
		}
		if _, err = f.orchestrate(ctx, shared, params); err != nil {
			return "", err
		}
		action, err := f.postprocess(ctx, shared, params, prep, nil)
		if err != nil {
			return "", newStepError(f.name, PhasePostprocess, err)
		}
		return action, nil
	})
}

// traced wraps a flow run with a span and start/end events.
func (f *Flow) traced(ctx context.Context, fn func(ctx context.Context) (Action, error)) (Action, error) {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, f.kind+".run "+f.name)
	span.WithAttributes(map[string]string{"node.name": f.name, "node.kind": f.kind, "run.id": RunID(ctx)})
	f.emit(ctx, &event.Context{EventType: event.NodeStart}, nil, nil)
	action, err := fn(ctx)
	f.emit(ctx, &event.Context{EventType: event.NodeEnd, Action: string(action), TimeTaken: clock.Since(started)}, err, nil)
	tracing.EndSpan(span, err)
	return action, err
}

// orchestrate runs one pass over the graph with params and returns the
// action of the last unit.
func (f *Flow) orchestrate(ctx context.Context, shared interface{}, params Params) (Action, error) {
	var action Action
	current := f.start
	for current != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		current.SetParams(params.Clone())
		var err error
		if action, err = current.lifecycle(ctx, shared); err != nil {
			return "", err
		}
		if current, err = f.next(ctx, current, action); err != nil {
			return "", err
		}
	}
	return action, nil
}

func (f *Flow) next(ctx context.Context, current Unit, action Action) (Unit, error) {
	label := action.orDefault()
	if next := current.Successor(label); next != nil {
		return next, nil
	}
	if len(current.Successors()) == 0 {
		return nil, nil
	}
	available := actionsOf(current)
	progress.UpdateCtx(ctx, progress.Delta{Unmatched: 1})
	f.emit(ctx, &event.Context{EventType: event.FlowUnmatched, Action: string(label)}, nil,
		map[string]interface{}{"unit": current.Name(), "available": available})
	err := fmt.Errorf("%w: flow ends: '%s' not found in %v", ErrUnmatchedAction, label, available)
	return nil, f.diagnose(ctx, policy.Unmatched, err,
		zap.String("node", current.Name()), zap.String("action", string(label)), zap.Strings("available", available))
}

func actionsOf(u Unit) []string {
	if labeled, ok := u.(interface{ actions() []string }); ok {
		return labeled.actions()
	}
	return nil
}
