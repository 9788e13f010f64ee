package flow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/service/event"
	"go.uber.org/zap"
)

// Unit is a node of the workflow graph: a Node, a Flow or a BatchFlow.
type Unit interface {
	// Name returns the unit name used in logs, events and graph exports.
	Name() string
	// Kind returns node, batch, flow or batchFlow.
	Kind() string
	// Params returns the current parameter bag.
	Params() Params
	// SetParams replaces the parameter bag.
	SetParams(params Params)
	// Successor returns the unit registered for action, or nil.
	Successor(action Action) Unit
	// Successors returns a copy of the successor map.
	Successors() map[Action]Unit
	// AddSuccessor registers next under action (DefaultAction when omitted)
	// and returns next so that calls can be chained. Wiring happens before
	// any run, so an overwrite is judged by the unit's own policy
	// (WithPolicy) only; a policy carried in a run context does not apply.
	AddSuccessor(next Unit, action ...Action) Unit
	// Connect is an alias of AddSuccessor.
	Connect(next Unit, action ...Action) Unit
	// Transition starts the fluent form: u.Transition("retry").To(next).
	Transition(action Action) *Transition
	// Err returns the errors recorded while wiring the unit.
	Err() error
	// Run runs the unit. On a flow this walks its graph; on a node only the
	// node itself runs, even if it has successors.
	Run(ctx context.Context, shared interface{}) (Action, error)

	lifecycle(ctx context.Context, shared interface{}) (Action, error)
}

// Transition is the pending half of a fluent successor registration.
type Transition struct {
	from   *base
	action Action
}

// To registers next as the successor for the pending action and returns next.
func (t *Transition) To(next Unit) Unit {
	return t.from.AddSuccessor(next, t.action)
}

type base struct {
	options
	kind       string
	mux        sync.RWMutex
	params     Params
	successors map[Action]Unit
	errs       []error
	publisher  *event.Publisher
}

func (b *base) init(kind string, behaviour interface{}, opts []Option) {
	b.kind = kind
	b.maxRetries = 1
	for _, opt := range opts {
		opt(&b.options)
	}
	if behaviour != nil {
		b.behaviour = behaviour
	}
	if b.maxRetries < 1 {
		b.maxRetries = 1
	}
	if b.wait < 0 {
		b.wait = 0
	}
	if b.name == "" {
		b.name = nameOf(b.behaviour, kind)
	}
	b.params = Params{}
	b.successors = map[Action]Unit{}
	b.publisher = event.NewPublisher(b.listeners...)
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Kind() string {
	return b.kind
}

func (b *base) Params() Params {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.params
}

func (b *base) SetParams(params Params) {
	if params == nil {
		params = Params{}
	}
	b.mux.Lock()
	b.params = params
	b.mux.Unlock()
}

func (b *base) Successor(action Action) Unit {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return b.successors[action]
}

func (b *base) Successors() map[Action]Unit {
	b.mux.RLock()
	defer b.mux.RUnlock()
	ret := make(map[Action]Unit, len(b.successors))
	for k, v := range b.successors {
		ret[k] = v
	}
	return ret
}

func (b *base) hasSuccessors() bool {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return len(b.successors) > 0
}

// actions returns the registered labels in sorted order.
func (b *base) actions() []string {
	b.mux.RLock()
	ret := make([]string, 0, len(b.successors))
	for k := range b.successors {
		ret = append(ret, string(k))
	}
	b.mux.RUnlock()
	sort.Strings(ret)
	return ret
}

func (b *base) AddSuccessor(next Unit, action ...Action) Unit {
	label := actionOf(action)
	if strings.TrimSpace(string(label)) == "" {
		b.record(fmt.Errorf("%w: %q on %s", ErrInvalidAction, label, b.name))
		return next
	}
	if IsNil(next) {
		b.record(fmt.Errorf("%w: action '%s' on %s", ErrNilSuccessor, label, b.name))
		return next
	}
	b.mux.Lock()
	_, exists := b.successors[label]
	b.successors[label] = next
	b.mux.Unlock()
	if exists {
		err := fmt.Errorf("%w for action '%s' on %s", ErrSuccessorOverwrite, label, b.name)
		// no run context exists yet: only the unit policy applies
		if dErr := b.diagnose(context.Background(), policy.Overwrite, err,
			zap.String("node", b.name), zap.String("action", string(label))); dErr != nil {
			b.record(dErr)
		}
	}
	return next
}

func (b *base) Connect(next Unit, action ...Action) Unit {
	return b.AddSuccessor(next, action...)
}

func (b *base) Transition(action Action) *Transition {
	return &Transition{from: b, action: action}
}

func (b *base) Err() error {
	b.mux.RLock()
	defer b.mux.RUnlock()
	return errors.Join(b.errs...)
}

func (b *base) record(err error) {
	b.mux.Lock()
	b.errs = append(b.errs, err)
	b.mux.Unlock()
}

func (b *base) loggerFor(ctx context.Context) *zap.Logger {
	if b.logger != nil {
		return b.logger
	}
	if logger := loggerFrom(ctx); logger != nil {
		return logger
	}
	return defaultLogger
}

// diagnose reports a diagnostic according to the unit's (or the context's)
// policy. It returns err in fail mode and nil otherwise.
func (b *base) diagnose(ctx context.Context, diagnostic policy.Diagnostic, err error, fields ...zap.Field) error {
	p := b.policy
	if p == nil {
		p = policy.FromContext(ctx)
	}
	switch p.Mode(diagnostic) {
	case policy.ModeIgnore:
		return nil
	case policy.ModeFail:
		return err
	}
	fields = append(fields, zap.String("diagnostic", string(diagnostic)))
	if runID := RunID(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}
	b.loggerFor(ctx).Warn(err.Error(), fields...)
	if p != nil && p.Notify != nil {
		p.Notify(ctx, diagnostic, err)
	}
	return nil
}

func (b *base) emit(ctx context.Context, eventContext *event.Context, err error, metadata map[string]interface{}) {
	fromCtx := event.PublisherFrom(ctx)
	if b.publisher.Len() == 0 && fromCtx.Len() == 0 {
		return
	}
	eventContext.RunID = RunID(ctx)
	eventContext.Node = b.name
	eventContext.Kind = b.kind
	anEvent := event.NewEvent(eventContext, err)
	anEvent.CreatedAt = clock.Now()
	anEvent.Metadata = metadata
	b.publisher.Publish(anEvent)
	fromCtx.Publish(anEvent)
}

func run(ctx context.Context, u Unit, b *base, shared interface{}) (Action, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := preflight(ctx, u, b); err != nil {
		return "", err
	}
	return u.lifecycle(ctx, shared)
}

// preflight refuses to start a unit with wiring errors and raises the
// detached diagnostic for a unit run directly despite having successors.
func preflight(ctx context.Context, u Unit, b *base) error {
	var err error
	if root, ok := u.(interface{ Start() Unit }); ok {
		err = errors.Join(u.Err(), Validate(root.Start()))
	} else {
		err = u.Err()
	}
	if err != nil {
		return err
	}
	if b.hasSuccessors() {
		detached := fmt.Errorf("%w: %s", ErrDetachedRun, b.name)
		return b.diagnose(ctx, policy.Detached, detached, zap.String("node", b.name))
	}
	return nil
}

// Validate returns every wiring error recorded on units reachable from u,
// descending into nested flows.
func Validate(u Unit) error {
	var errs []error
	visited := map[Unit]bool{}
	var walk func(u Unit)
	walk = func(u Unit) {
		if IsNil(u) || visited[u] {
			return
		}
		visited[u] = true
		if err := u.Err(); err != nil {
			errs = append(errs, err)
		}
		if root, ok := u.(interface{ Start() Unit }); ok {
			walk(root.Start())
		}
		successors := u.Successors()
		labels := make([]string, 0, len(successors))
		for label := range successors {
			labels = append(labels, string(label))
		}
		sort.Strings(labels)
		for _, label := range labels {
			walk(successors[Action(label)])
		}
	}
	walk(u)
	return errors.Join(errs...)
}

func nameOf(behaviour interface{}, fallback string) string {
	if behaviour == nil {
		return fallback
	}
	t := reflect.TypeOf(behaviour)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" || strings.Contains(name, "[") {
		return fallback
	}
	return name
}

// IsNil reports whether u is nil or a typed nil pointer.
func IsNil(u Unit) bool {
	if u == nil {
		return true
	}
	v := reflect.ValueOf(u)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
