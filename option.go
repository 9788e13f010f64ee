package pocketflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/pocketflow/flow"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/dao"
	"github.com/viant/pocketflow/service/event"
	"github.com/viant/pocketflow/tracing"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

// WithLogger replaces the logger built from Config.Logging.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPolicy replaces the diagnostics policy built from Config.Diagnostics.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithRegisterer sets the Prometheus registerer used when metrics are enabled;
// it defaults to prometheus.DefaultRegisterer.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Service) {
		s.registerer = registerer
	}
}

// WithListener subscribes listener to the lifecycle events of every run.
func WithListener(listener event.Listener) Option {
	return func(s *Service) {
		s.publisher.Subscribe(listener)
	}
}

// WithProgressListener is notified with a counters snapshot each time a run
// makes progress.
func WithProgressListener(listener func(runID string, counters progress.Counters)) Option {
	return func(s *Service) {
		s.onProgress = listener
	}
}

// WithRunStore sets the run history DAO.
func WithRunStore(store dao.Service[string, RunRecord]) Option {
	return func(s *Service) {
		s.runs = store
	}
}

// WithUnitOptions appends options applied to every unit created by the
// service, after the service defaults.
func WithUnitOptions(options ...flow.Option) Option {
	return func(s *Service) {
		s.unitOptions = append(s.unitOptions, options...)
	}
}

// WithTracing enables OpenTelemetry tracing; spans go to stdout, or to
// outputFile when set. Only the first initialisation takes effect.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter enables tracing with a caller supplied exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
