package flow

import (
	"time"

	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/service/event"
	"go.uber.org/zap"
)

// Option customises a unit at construction time.
type Option func(o *options)

type options struct {
	name       string
	logger     *zap.Logger
	policy     *policy.Policy
	listeners  []event.Listener
	behaviour  interface{}
	maxRetries int
	wait       time.Duration
}

// WithName overrides the unit name used in logs, events and graph exports.
// By default the behaviour's type name is used.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for diagnostics and lifecycle debug lines.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPolicy sets the diagnostics policy of the unit; it takes precedence
// over a policy carried by the run context.
func WithPolicy(p *policy.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithListener subscribes a listener to the unit's lifecycle events.
func WithListener(listener event.Listener) Option {
	return func(o *options) {
		if listener != nil {
			o.listeners = append(o.listeners, listener)
		}
	}
}

// WithBehaviour sets the prepare/postprocess behaviour of a flow.
func WithBehaviour(behaviour interface{}) Option {
	return func(o *options) {
		o.behaviour = behaviour
	}
}

// WithRetry makes the execute step retry up to maxRetries attempts in total,
// pausing wait between failed attempts. Values below one are treated as one.
func WithRetry(maxRetries int, wait time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.wait = wait
	}
}
