// Package metrics turns lifecycle events into Prometheus series.
package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viant/pocketflow/service/event"
)

// DefaultNamespace prefixes every series name.
const DefaultNamespace = "pocketflow"

// Collector holds the unit run series. Handle is an event.Listener.
type Collector struct {
	runs      *prometheus.CounterVec
	retries   *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	unmatched *prometheus.CounterVec
	passes    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New registers the series with registerer; a nil registerer leaves them
// unregistered. Series already registered by another collector with the same
// namespace are shared, so several services may report to one registry.
func New(namespace string, registerer prometheus.Registerer) (*Collector, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	ret := &Collector{}
	var err error
	if ret.runs, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_runs_total",
		Help:      "Completed unit runs by unit, kind and status",
	}, []string{"unit", "kind", "status"})); err != nil {
		return nil, err
	}
	if ret.retries, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_retries_total",
		Help:      "Failed execute attempts followed by a retry",
	}, []string{"unit"})); err != nil {
		return nil, err
	}
	if ret.fallbacks, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_fallbacks_total",
		Help:      "Execute steps that exhausted their attempts",
	}, []string{"unit"})); err != nil {
		return nil, err
	}
	if ret.unmatched, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_unmatched_total",
		Help:      "Flows that ended on an action no successor matched",
	}, []string{"flow"})); err != nil {
		return nil, err
	}
	if ret.passes, err = register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_flow_passes_total",
		Help:      "Completed batch flow passes",
	}, []string{"flow"})); err != nil {
		return nil, err
	}
	if ret.duration, err = register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "unit_duration_seconds",
		Help:      "Unit run duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"unit", "kind"})); err != nil {
		return nil, err
	}
	return ret, nil
}

// register adds collector to registerer, reusing an equal collector that is
// already registered.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (C, error) {
	if registerer == nil {
		return collector, nil
	}
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}
	var registered prometheus.AlreadyRegisteredError
	if errors.As(err, &registered) {
		if existing, ok := registered.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return collector, fmt.Errorf("failed to register metrics: %w", err)
}

// Handle records e.
func (c *Collector) Handle(e *event.Event) {
	if c == nil || e == nil || e.Context == nil {
		return
	}
	ec := e.Context
	switch ec.EventType {
	case event.NodeEnd:
		status := "ok"
		if e.Failed() {
			status = "error"
		}
		c.runs.WithLabelValues(ec.Node, ec.Kind, status).Inc()
		c.duration.WithLabelValues(ec.Node, ec.Kind).Observe(ec.TimeTaken.Seconds())
	case event.NodeRetry:
		c.retries.WithLabelValues(ec.Node).Inc()
	case event.NodeFallback:
		c.fallbacks.WithLabelValues(ec.Node).Inc()
	case event.FlowUnmatched:
		c.unmatched.WithLabelValues(ec.Node).Inc()
	case event.FlowPass:
		c.passes.WithLabelValues(ec.Node).Inc()
	}
}

// Handler exposes gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
