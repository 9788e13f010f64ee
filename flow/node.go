package flow

import (
	"context"

	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/event"
	"github.com/viant/pocketflow/tracing"
	"go.uber.org/zap"
)

// Unit kinds.
const (
	KindNode      = "node"
	KindBatch     = "batch"
	KindFlow      = "flow"
	KindBatchFlow = "batchFlow"
)

// Node is a leaf unit. Its behaviour implements any subset of Preparer,
// Executor, Fallback and Postprocessor; missing steps are no-ops.
type Node struct {
	base
}

// NewNode creates a node running behaviour.
func NewNode(behaviour interface{}, opts ...Option) *Node {
	ret := &Node{}
	ret.init(KindNode, behaviour, opts)
	return ret
}

// NewBatchNode creates a node whose prepare step yields a slice; every item
// goes through execute (with retry and fallback) in order and postprocess
// receives the results as []interface{} of the same length.
func NewBatchNode(behaviour interface{}, opts ...Option) *Node {
	ret := &Node{}
	ret.init(KindBatch, behaviour, opts)
	return ret
}

// Behaviour returns the node behaviour.
func (n *Node) Behaviour() interface{} {
	return n.behaviour
}

// Run runs this node only and returns the action of its postprocess step.
func (n *Node) Run(ctx context.Context, shared interface{}) (Action, error) {
	return run(ctx, n, &n.base, shared)
}

func (n *Node) lifecycle(ctx context.Context, shared interface{}) (Action, error) {
	started := clock.Now()
	ctx, span := tracing.StartSpan(ctx, "node.run "+n.name)
	span.WithAttributes(map[string]string{"node.name": n.name, "node.kind": n.kind, "run.id": RunID(ctx)})
	n.emit(ctx, &event.Context{EventType: event.NodeStart}, nil, nil)

	action, err := n.steps(ctx, shared)
	elapsed := clock.Since(started)
	if err != nil {
		progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
	} else {
		progress.UpdateCtx(ctx, progress.Delta{Steps: 1})
		span.WithAttributes(map[string]string{"node.action": string(action.orDefault())})
	}
	n.loggerFor(ctx).Debug("node finished",
		zap.String("node", n.name), zap.String("action", string(action)),
		zap.Duration("elapsed", elapsed), zap.Error(err))
	n.emit(ctx, &event.Context{EventType: event.NodeEnd, Action: string(action), TimeTaken: elapsed}, err, nil)
	tracing.EndSpan(span, err)
	return action, err
}

func (n *Node) steps(ctx context.Context, shared interface{}) (Action, error) {
	params := n.Params()
	prep, err := n.prepare(ctx, shared, params)
	if err != nil {
		return "", newStepError(n.name, PhasePrepare, err)
	}
	var exec interface{}
	if n.kind == KindBatch {
		exec, err = n.executeBatch(ctx, prep)
	} else {
		exec, err = n.executeWithRetry(ctx, prep)
	}
	if err != nil {
		return "", newStepError(n.name, PhaseExecute, err)
	}
	action, err := n.postprocess(ctx, shared, params, prep, exec)
	if err != nil {
		return "", newStepError(n.name, PhasePostprocess, err)
	}
	return action, nil
}

func (b *base) prepare(ctx context.Context, shared interface{}, params Params) (interface{}, error) {
	preparer, ok := b.behaviour.(Preparer)
	if !ok {
		return nil, nil
	}
	return preparer.Prepare(ctx, shared, params)
}

func (b *base) execute(ctx context.Context, prep interface{}) (interface{}, error) {
	executor, ok := b.behaviour.(Executor)
	if !ok {
		return nil, nil
	}
	return executor.Execute(ctx, prep)
}

func (b *base) fallback(ctx context.Context, prep interface{}, err error) (interface{}, error) {
	fallback, ok := b.behaviour.(Fallback)
	if !ok {
		return nil, err
	}
	return fallback.ExecuteFallback(ctx, prep, err)
}

func (b *base) postprocess(ctx context.Context, shared interface{}, params Params, prep, exec interface{}) (Action, error) {
	postprocessor, ok := b.behaviour.(Postprocessor)
	if !ok {
		return "", nil
	}
	return postprocessor.Postprocess(ctx, shared, params, prep, exec)
}
