// Package messaging defines the handoff queue used by flows that run
// concurrently and take turns: one flow puts a message, the other gets it.
//
// Two implementations are provided: memory (the default) and fs, which keeps
// the buffered backlog as JSON objects in any afs supported storage.
package messaging
