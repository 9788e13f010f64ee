// Package flow is a small directed-graph workflow engine.
//
// A Unit runs a three step lifecycle, prepare -> execute -> postprocess, and
// the action returned by postprocess selects the next unit among the labelled
// successors registered on it. A Flow is itself a Unit: it walks the graph
// from its start unit until an action matches no successor, so flows nest.
//
// Behaviour is supplied by a value implementing any subset of Preparer,
// Executor, Fallback and Postprocessor; missing steps are no-ops:
//
//	load := flow.NewNode(&Loader{})
//	answer := flow.NewNode(&Answer{}, flow.WithRetry(3, time.Second))
//	load.Connect(answer)
//	answer.Transition("retry").To(answer)
//	action, err := flow.NewFlow(load).Run(ctx, shared)
//
// The shared value passed to Run is handed untouched to every lifecycle call
// of the run; the engine neither copies nor synchronises it.
package flow
