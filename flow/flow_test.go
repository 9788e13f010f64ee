package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/progress"
)

type trace struct {
	visits []string
}

func step(name string, action Action) *Funcs[interface{}, interface{}] {
	return &Funcs[interface{}, interface{}]{
		Post: func(ctx context.Context, shared interface{}, params Params, prep interface{}, exec interface{}) (Action, error) {
			tr := shared.(*trace)
			tr.visits = append(tr.visits, name)
			return action, nil
		},
	}
}

func TestFlow_Traversal(t *testing.T) {
	logger, logs := observed()
	a := NewNode(step("a", ""), WithName("a"))
	b := NewNode(step("b", ""), WithName("b"))
	a.AddSuccessor(b)
	f := NewFlow(a, WithLogger(logger))
	shared := &trace{}
	_, err := f.Run(context.Background(), shared)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, shared.visits)
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, a, f.Start())
	assert.Equal(t, KindFlow, f.Kind())
}

func TestFlow_Unmatched(t *testing.T) {
	var testCases = []struct {
		description string
		action      Action
		wire        bool
		expectLogs  int
	}{
		{description: "unmatched label with successors warns", action: "x", wire: true, expectLogs: 1},
		{description: "dead end without successors is silent", action: "x", wire: false, expectLogs: 0},
		{description: "matched default label", action: "", wire: true, expectLogs: 0},
	}
	for _, testCase := range testCases {
		logger, logs := observed()
		a := NewNode(step("a", testCase.action), WithName("a"))
		if testCase.wire {
			a.AddSuccessor(NewNode(step("b", "")))
		}
		ctx, tracker := progress.WithNewTracker(context.Background(), "run", "flow", nil)
		_, err := NewFlow(a, WithLogger(logger)).Run(ctx, &trace{})
		require.NoError(t, err, testCase.description)
		require.Equal(t, testCase.expectLogs, logs.Len(), testCase.description)
		assert.EqualValues(t, testCase.expectLogs, tracker.Snapshot().Unmatched, testCase.description)
		if testCase.expectLogs > 0 {
			entry := logs.All()[0]
			assert.Contains(t, entry.Message, "flow ends: 'x' not found in [default]", testCase.description)
			assert.Equal(t, "a", entry.ContextMap()["node"], testCase.description)
		}
	}

	a := NewNode(step("a", "x"), WithName("a"))
	a.AddSuccessor(NewNode(nil))
	_, err := NewFlow(a, WithPolicy(&policy.Policy{Unmatched: policy.ModeFail})).Run(context.Background(), &trace{})
	assert.True(t, errors.Is(err, ErrUnmatchedAction))
}

func TestFlow_SelfLoop(t *testing.T) {
	type state struct {
		count int
		sunk  int
	}
	logger, logs := observed()
	loop := NewNode(&Funcs[interface{}, interface{}]{
		Post: func(ctx context.Context, shared interface{}, params Params, prep interface{}, exec interface{}) (Action, error) {
			s := shared.(*state)
			s.count++
			if s.count < 3 {
				return "continue", nil
			}
			return "end", nil
		},
	}, WithName("loop"), WithLogger(logger))
	sink := NewNode(&Funcs[interface{}, interface{}]{
		Post: func(ctx context.Context, shared interface{}, params Params, prep interface{}, exec interface{}) (Action, error) {
			shared.(*state).sunk++
			return "", nil
		},
	}, WithName("sink"), WithLogger(logger))
	loop.Transition("continue").To(loop)
	loop.Transition("end").To(sink)

	f := NewFlow(loop, WithLogger(logger))
	s := &state{}
	_, err := f.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 3, s.count)
	assert.Equal(t, 1, s.sunk)
	assert.Equal(t, 0, logs.Len())
	assert.Nil(t, f.policy)
	assert.Nil(t, loop.policy)
}

func TestFlow_ResultAndParams(t *testing.T) {
	var seen []Params
	record := &Funcs[interface{}, interface{}]{
		Post: func(ctx context.Context, shared interface{}, params Params, prep interface{}, exec interface{}) (Action, error) {
			seen = append(seen, params)
			return "terminal", nil
		},
	}
	inner := NewFlow(NewNode(record), WithName("inner"))
	var flowPrep interface{}
	outer := NewFlow(inner, WithName("outer"), WithBehaviour(&Funcs[string, interface{}]{
		Prep: func(ctx context.Context, shared interface{}, params Params) (string, error) {
			return "prepared", nil
		},
		Post: func(ctx context.Context, shared interface{}, params Params, prep string, exec interface{}) (Action, error) {
			flowPrep = prep
			assert.Nil(t, exec)
			return "finished", nil
		},
	}))
	outer.SetParams(Params{"a": 1, "b": 1})
	action, err := outer.RunWithParams(context.Background(), nil, Params{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, Action("finished"), action)
	assert.Equal(t, "prepared", flowPrep)
	require.Len(t, seen, 1)
	assert.Equal(t, Params{"a": 1, "b": 2}, seen[0])
	assert.Equal(t, Params{"a": 1, "b": 1}, outer.Params())

	action, err = inner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Action(""), action)
}

func TestFlow_Execute(t *testing.T) {
	f := NewFlow(NewNode(nil))
	_, err := f.Execute(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrFlowExecute))

	empty := NewFlow(nil)
	_, err = empty.Run(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNilSuccessor))
}

func TestFlow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewNode(&Funcs[interface{}, interface{}]{
		Post: func(ctx context.Context, shared interface{}, params Params, prep interface{}, exec interface{}) (Action, error) {
			cancel()
			return "", nil
		},
	})
	loop.AddSuccessor(loop)
	_, err := NewFlow(loop).Run(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFlow_ErrorAbortsPass(t *testing.T) {
	failure := errors.New("exec failed")
	a := NewNode(&Funcs[interface{}, interface{}]{
		Exec: func(ctx context.Context, prep interface{}) (interface{}, error) {
			return nil, failure
		},
	}, WithName("a"))
	tr := &trace{}
	a.AddSuccessor(NewNode(step("b", "")))
	_, err := NewFlow(a).Run(context.Background(), tr)
	assert.True(t, errors.Is(err, failure))
	assert.Empty(t, tr.visits)
}

func TestBatchFlow(t *testing.T) {
	var order []int
	worker := NewNode(&Funcs[interface{}, interface{}]{
		Prep: func(ctx context.Context, shared interface{}, params Params) (interface{}, error) {
			order = append(order, params.Int("x"))
			assert.Equal(t, "own", params.String("scope"))
			assert.Equal(t, "call", params.String("mode"))
			return nil, nil
		},
	})
	var post interface{}
	bf := NewBatchFlow(worker, &Funcs[[]Params, interface{}]{
		Prep: func(ctx context.Context, shared interface{}, params Params) ([]Params, error) {
			return []Params{{"x": 1, "mode": "element"}, {"x": 2}}, nil
		},
		Post: func(ctx context.Context, shared interface{}, params Params, prep []Params, exec interface{}) (Action, error) {
			post = prep
			return "batched", nil
		},
	})
	bf.SetParams(Params{"scope": "own", "mode": "own"})
	ctx, tracker := progress.WithNewTracker(context.Background(), "run", bf.Name(), nil)
	action, err := bf.RunWithParams(ctx, nil, Params{"mode": "call"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, Action("batched"), action)
	assert.Len(t, post, 2)
	assert.EqualValues(t, 2, tracker.Snapshot().Passes)
	assert.EqualValues(t, 2, tracker.Snapshot().Steps)
	assert.Equal(t, KindBatchFlow, bf.Kind())
}

func TestBatchFlow_Params(t *testing.T) {
	var testCases = []struct {
		description  string
		prep         interface{}
		expectPasses int
		expectErr    error
	}{
		{description: "nil yields zero passes", prep: nil},
		{description: "generic maps", prep: []map[string]interface{}{{"x": 1}}, expectPasses: 1},
		{description: "interface list", prep: []interface{}{map[string]interface{}{"x": 1}, Params{"x": 2}}, expectPasses: 2},
		{description: "invalid", prep: "nope", expectErr: ErrInvalidBatchParams},
	}
	for _, testCase := range testCases {
		prep := testCase.prep
		passes := 0
		worker := NewNode(&Funcs[interface{}, interface{}]{
			Exec: func(ctx context.Context, p interface{}) (interface{}, error) {
				passes++
				return nil, nil
			},
		})
		bf := NewBatchFlow(worker, &Funcs[interface{}, interface{}]{
			Prep: func(ctx context.Context, shared interface{}, params Params) (interface{}, error) {
				return prep, nil
			},
		})
		_, err := bf.Run(context.Background(), nil)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expectPasses, passes, testCase.description)
	}
}
