package flow

import "context"

// Preparer reads the shared value (and the unit's params) and produces the
// input of the execute step.
type Preparer interface {
	Prepare(ctx context.Context, shared interface{}, params Params) (interface{}, error)
}

// Executor performs the unit's work. It is the only step that is retried.
type Executor interface {
	Execute(ctx context.Context, prep interface{}) (interface{}, error)
}

// Fallback produces a result once every execute attempt failed. Without a
// Fallback the last error propagates.
type Fallback interface {
	ExecuteFallback(ctx context.Context, prep interface{}, err error) (interface{}, error)
}

// Postprocessor writes results back to the shared value and returns the
// action selecting the next unit. An empty action means DefaultAction.
type Postprocessor interface {
	Postprocess(ctx context.Context, shared interface{}, params Params, prep, exec interface{}) (Action, error)
}

// Funcs bundles typed lifecycle closures; nil closures are no-ops.
type Funcs[P, E any] struct {
	Prep     func(ctx context.Context, shared interface{}, params Params) (P, error)
	Exec     func(ctx context.Context, prep P) (E, error)
	Fallback func(ctx context.Context, prep P, err error) (E, error)
	Post     func(ctx context.Context, shared interface{}, params Params, prep P, exec E) (Action, error)
}

func (f *Funcs[P, E]) Prepare(ctx context.Context, shared interface{}, params Params) (interface{}, error) {
	if f.Prep == nil {
		return nil, nil
	}
	return f.Prep(ctx, shared, params)
}

func (f *Funcs[P, E]) Execute(ctx context.Context, prep interface{}) (interface{}, error) {
	if f.Exec == nil {
		return nil, nil
	}
	return f.Exec(ctx, as[P](prep))
}

func (f *Funcs[P, E]) ExecuteFallback(ctx context.Context, prep interface{}, err error) (interface{}, error) {
	if f.Fallback == nil {
		return nil, err
	}
	return f.Fallback(ctx, as[P](prep), err)
}

func (f *Funcs[P, E]) Postprocess(ctx context.Context, shared interface{}, params Params, prep, exec interface{}) (Action, error) {
	if f.Post == nil {
		return "", nil
	}
	return f.Post(ctx, shared, params, as[P](prep), as[E](exec))
}

// BatchFuncs bundles typed closures for a batch unit: Prep yields the items,
// Exec handles one item and Post receives every result in input order.
type BatchFuncs[T, E any] struct {
	Prep     func(ctx context.Context, shared interface{}, params Params) ([]T, error)
	Exec     func(ctx context.Context, item T) (E, error)
	Fallback func(ctx context.Context, item T, err error) (E, error)
	Post     func(ctx context.Context, shared interface{}, params Params, items []T, results []E) (Action, error)
}

func (f *BatchFuncs[T, E]) Prepare(ctx context.Context, shared interface{}, params Params) (interface{}, error) {
	if f.Prep == nil {
		return nil, nil
	}
	return f.Prep(ctx, shared, params)
}

func (f *BatchFuncs[T, E]) Execute(ctx context.Context, item interface{}) (interface{}, error) {
	if f.Exec == nil {
		return nil, nil
	}
	return f.Exec(ctx, as[T](item))
}

func (f *BatchFuncs[T, E]) ExecuteFallback(ctx context.Context, item interface{}, err error) (interface{}, error) {
	if f.Fallback == nil {
		return nil, err
	}
	return f.Fallback(ctx, as[T](item), err)
}

func (f *BatchFuncs[T, E]) Postprocess(ctx context.Context, shared interface{}, params Params, prep, exec interface{}) (Action, error) {
	if f.Post == nil {
		return "", nil
	}
	raw, _ := exec.([]interface{})
	results := make([]E, len(raw))
	for i, r := range raw {
		results[i] = as[E](r)
	}
	return f.Post(ctx, shared, params, as[[]T](prep), results)
}

func as[T any](v interface{}) T {
	ret, _ := v.(T)
	return ret
}
