// Package progress keeps aggregated counters (steps run, retries, fallbacks,
// failures, batch passes, unmatched actions) for a single top-level run.
// The tracker travels in the context so every unit of the run updates the
// same counters without a global registry.
package progress
