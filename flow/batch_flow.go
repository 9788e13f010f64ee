package flow

import (
	"context"
	"fmt"

	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/event"
)

// BatchFlow runs its graph once per element of the params list produced by
// its prepare step, sequentially and in order.
type BatchFlow struct {
	Flow
}

// NewBatchFlow creates a batch flow. behaviour must implement Preparer
// returning []Params (or []map[string]interface{}); it may implement
// Postprocessor, which receives that list and a nil execute result.
func NewBatchFlow(start Unit, behaviour interface{}, opts ...Option) *BatchFlow {
	ret := &BatchFlow{Flow: Flow{start: start}}
	ret.initFlow(KindBatchFlow, behaviour, opts)
	return ret
}

// Run runs one pass per params element, then the postprocess step.
func (f *BatchFlow) Run(ctx context.Context, shared interface{}) (Action, error) {
	return run(ctx, f, &f.base, shared)
}

// RunWithParams is Run with override applied on top of every pass's params.
func (f *BatchFlow) RunWithParams(ctx context.Context, shared interface{}, override Params) (Action, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := preflight(ctx, f, &f.base); err != nil {
		return "", err
	}
	return f.runWith(ctx, shared, override)
}

func (f *BatchFlow) lifecycle(ctx context.Context, shared interface{}) (Action, error) {
	return f.runWith(ctx, shared, nil)
}

func (f *BatchFlow) runWith(ctx context.Context, shared interface{}, override Params) (Action, error) {
	return f.traced(ctx, func(ctx context.Context) (Action, error) {
		own := f.Params()
		params := own.Merge(override)
		prep, err := f.prepare(ctx, shared, params)
		if err != nil {
			return "", newStepError(f.name, PhasePrepare, err)
		}
		passes, err := toParamsList(prep)
		if err != nil {
			return "", newStepError(f.name, PhasePrepare, err)
		}
		for i, element := range passes {
			if _, err = f.orchestrate(ctx, shared, own.Merge(element, override)); err != nil {
				return "", fmt.Errorf("pass %d: %w", i, err)
			}
			progress.UpdateCtx(ctx, progress.Delta{Passes: 1})
			f.emit(ctx, &event.Context{EventType: event.FlowPass, Pass: i + 1}, nil, nil)
		}
		action, err := f.postprocess(ctx, shared, params, prep, nil)
		if err != nil {
			return "", newStepError(f.name, PhasePostprocess, err)
		}
		return action, nil
	})
}
