// Package policy decides how the engine reacts to the non-fatal conditions it
// can detect while wiring or walking a graph: a successor label registered
// twice, a flow that stops because the returned action matched none of the
// registered labels, and a unit run directly although it has successors.
//
// Each condition can be reported as a warning (the default), promoted to an
// error, or ignored. A policy can be attached to a single unit or carried in
// the context of a run.
package policy
