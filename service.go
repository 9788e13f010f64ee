package pocketflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/afs"
	"github.com/viant/pocketflow/flow"
	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/internal/idgen"
	"github.com/viant/pocketflow/metrics"
	"github.com/viant/pocketflow/model/graph"
	"github.com/viant/pocketflow/policy"
	"github.com/viant/pocketflow/progress"
	"github.com/viant/pocketflow/service/dao"
	"github.com/viant/pocketflow/service/dao/store"
	"github.com/viant/pocketflow/service/event"
	"github.com/viant/pocketflow/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service wires logging, diagnostics, tracing, metrics and run history
// around the flow engine.
type Service struct {
	config      *Config
	logger      *zap.Logger
	policy      *policy.Policy
	publisher   *event.Publisher
	registerer  prometheus.Registerer
	collector   *metrics.Collector
	runs        dao.Service[string, RunRecord]
	onProgress  func(runID string, counters progress.Counters)
	unitOptions []flow.Option
	tracingErr  error
}

// New creates a service with DefaultConfig. Initialisation errors (run
// history, tracing or metrics) are logged and the affected concern falls back
// to its in-memory or disabled form.
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), publisher: event.NewPublisher()}
	if err := ret.init(options); err != nil {
		ret.logger.Warn("service initialised with errors", zap.Error(err))
	}
	return ret
}

// NewFromConfig creates a service from config, then applies options.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, publisher: event.NewPublisher()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// init applies options once and builds every concern; a failing concern is
// skipped and reported in the joined error.
func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	var errs []error
	if s.logger == nil {
		logger, err := s.config.Logging.Build()
		if err != nil {
			errs = append(errs, err)
			logger = zap.NewNop()
		}
		s.logger = logger
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(&s.config.Diagnostics)
	}
	if s.runs == nil {
		s.runs = store.NewMemoryStore[string, RunRecord](runKey).WithMatcher(matchRun)
		if URL := s.config.History.URL; URL != "" {
			fsStore, err := store.NewFSStore[RunRecord](context.Background(), afs.New(), URL, runKey)
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to open run history: %w", err))
			} else {
				s.runs = fsStore.WithMatcher(matchRun)
			}
		}
	}
	if s.tracingErr != nil {
		errs = append(errs, fmt.Errorf("failed to init tracing: %w", s.tracingErr))
	} else if tc := s.config.Tracing; tc.Enabled {
		if err := tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.Output); err != nil {
			errs = append(errs, fmt.Errorf("failed to init tracing: %w", err))
		}
	}
	if s.config.Metrics.Enabled {
		if s.registerer == nil {
			s.registerer = prometheus.DefaultRegisterer
		}
		collector, err := metrics.New(s.config.Metrics.Namespace, s.registerer)
		if err != nil {
			errs = append(errs, err)
		} else {
			s.collector = collector
			s.publisher.Subscribe(collector.Handle)
		}
	}
	return errors.Join(errs...)
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

func (s *Service) options(retry bool, options []flow.Option) []flow.Option {
	ret := []flow.Option{flow.WithLogger(s.logger), flow.WithPolicy(s.policy)}
	if retry {
		wait, _ := s.config.Retry.WaitDuration()
		ret = append(ret, flow.WithRetry(s.config.Retry.MaxRetries, wait))
	}
	ret = append(ret, s.unitOptions...)
	return append(ret, options...)
}

// NewNode creates a node with the service logger, policy and retry defaults.
func (s *Service) NewNode(behaviour interface{}, options ...flow.Option) *flow.Node {
	return flow.NewNode(behaviour, s.options(true, options)...)
}

// NewBatchNode creates a batch node with the service defaults.
func (s *Service) NewBatchNode(behaviour interface{}, options ...flow.Option) *flow.Node {
	return flow.NewBatchNode(behaviour, s.options(true, options)...)
}

// NewFlow creates a flow with the service logger and policy.
func (s *Service) NewFlow(start flow.Unit, options ...flow.Option) *flow.Flow {
	return flow.NewFlow(start, s.options(false, options)...)
}

// NewBatchFlow creates a batch flow with the service logger and policy.
func (s *Service) NewBatchFlow(start flow.Unit, behaviour interface{}, options ...flow.Option) *flow.BatchFlow {
	return flow.NewBatchFlow(start, behaviour, s.options(false, options)...)
}

// Run runs unit under a new run id (unless ctx already carries one), records
// the outcome in the run history and returns the unit's action.
func (s *Service) Run(ctx context.Context, unit flow.Unit, shared interface{}) (flow.Action, error) {
	if unit == nil {
		return "", fmt.Errorf("unit was nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runID := flow.RunID(ctx)
	if runID == "" {
		runID = idgen.New()
		ctx = flow.WithRunID(ctx, runID)
	}
	ctx = flow.ContextWithLogger(ctx, s.logger)
	ctx = policy.WithPolicy(ctx, s.policy)
	ctx = event.WithPublisher(ctx, s.publisher)
	var onChange func(progress.Counters)
	if s.onProgress != nil {
		onChange = func(counters progress.Counters) { s.onProgress(runID, counters) }
	}
	ctx, tracker := progress.WithNewTracker(ctx, runID, unit.Name(), onChange)
	ctx, span := tracing.StartSpan(ctx, "pocketflow.run "+unit.Name())
	span.WithAttributes(map[string]string{"run.id": runID, "unit.name": unit.Name(), "unit.kind": unit.Kind()})

	record := &RunRecord{ID: runID, Unit: unit.Name(), Kind: unit.Kind(), Status: StatusRunning, StartedAt: clock.Now()}
	s.logger.Debug("run started", zap.String("run.id", runID), zap.String("unit", unit.Name()))
	action, err := unit.Run(ctx, shared)
	ended := clock.Now()
	record.EndedAt = &ended
	record.Action = string(action)
	record.Progress = tracker.Snapshot()
	record.Status = StatusSucceeded
	if err != nil {
		record.Status = StatusFailed
		record.Error = err.Error()
	}
	tracing.EndSpan(span, err)
	if saveErr := s.runs.Save(context.WithoutCancel(ctx), record); saveErr != nil {
		s.logger.Warn("failed to save run record", zap.String("run.id", runID), zap.Error(saveErr))
	}
	s.logger.Debug("run finished", zap.String("run.id", runID), zap.String("status", record.Status),
		zap.Duration("elapsed", record.Duration()), zap.Error(err))
	return action, err
}

// RunAll runs units concurrently, each as its own run over the same shared
// value. The first failure cancels the context of the others, so units
// blocked on a queue Get return. The shared value is not synchronised.
func (s *Service) RunAll(ctx context.Context, shared interface{}, units ...flow.Unit) error {
	if ctx == nil {
		ctx = context.Background()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, unit := range units {
		group.Go(func() error {
			_, err := s.Run(groupCtx, unit, shared)
			return err
		})
	}
	return group.Wait()
}

// Runs lists recorded runs; filter with dao.NewParameter("Status", ...) or
// dao.NewParameter("Unit", ...).
func (s *Service) Runs(ctx context.Context, parameters ...*dao.Parameter) ([]*RunRecord, error) {
	return s.runs.List(ctx, parameters...)
}

// LoadRun returns the record of run id.
func (s *Service) LoadRun(ctx context.Context, id string) (*RunRecord, error) {
	return s.runs.Load(ctx, id)
}

// Graph extracts the static graph of unit.
func (s *Service) Graph(unit flow.Unit) *graph.Graph {
	return graph.Extract(unit)
}

// MetricsHandler serves the registered series; nil when metrics are disabled
// or the registerer is not a gatherer.
func (s *Service) MetricsHandler() http.Handler {
	if s.collector == nil {
		return nil
	}
	gatherer, ok := s.registerer.(prometheus.Gatherer)
	if !ok {
		return nil
	}
	return metrics.Handler(gatherer)
}
