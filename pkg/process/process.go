package process

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kyma-project/cloud-pricing-collector/pkg/collector"
	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/otel"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

const (
	DefaultWorkersPoolSize = 4
	DefaultProviderTimeout = 300 * time.Second
)

var ErrAlreadyRun = errors.New("process has already run")

type State int32

const (
	Idle State = iota
	Dispatching
	Collecting
	Aggregating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dispatching:
		return "dispatching"
	case Collecting:
		return "collecting"
	case Aggregating:
		return "aggregating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

type Normalizer interface {
	Normalize(rec resource.Record, providerHint resource.Provider) resource.Instance
}

type Validator interface {
	Validate(instance resource.Instance) bool
}

type Option func(*Process)

func WithWorkersPoolSize(size int) Option {
	return func(p *Process) {
		if size > 0 {
			p.workersPoolSize = size
		}
	}
}

func WithProviderTimeout(timeout time.Duration) Option {
	return func(p *Process) {
		if timeout > 0 {
			p.providerTimeout = timeout
		}
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

func WithRunID(runID string) Option {
	return func(p *Process) {
		p.runID = runID
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Process) {
		p.now = now
	}
}

// Process runs every registered collector once and aggregates the valid instances.
// A Process is single use.
type Process struct {
	registry        *collector.Registry
	normalizer      Normalizer
	validator       Validator
	workersPoolSize int
	providerTimeout time.Duration
	runID           string
	now             func() time.Time
	logger          *zap.SugaredLogger

	state atomic.Int32
}

type Result struct {
	Instances []resource.Instance
	Summary   Summary
	Success   bool
}

// taskResult is the outcome of one provider task.
type taskResult struct {
	provider  resource.Provider
	instances []resource.Instance
	err       error
}

func New(registry *collector.Registry, normalizer Normalizer, validator Validator, opts ...Option) *Process {
	p := &Process{
		registry:        registry,
		normalizer:      normalizer,
		validator:       validator,
		workersPoolSize: DefaultWorkersPoolSize,
		providerTimeout: DefaultProviderTimeout,
		now:             time.Now,
		logger:          zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.runID == "" {
		p.runID = uuid.NewString()
	}

	return p
}

func (p *Process) State() State {
	return State(p.state.Load())
}

func (p *Process) RunID() string {
	return p.runID
}

// Run dispatches one task per collector to the worker pool, waits for all of them and
// aggregates their instances in registration order. Provider failures end up in the summary.
func (p *Process) Run(ctx context.Context) (*Result, error) {
	if !p.state.CompareAndSwap(int32(Idle), int32(Dispatching)) {
		return nil, ErrAlreadyRun
	}

	ctx, span := otel.StartRunSpan(ctx, p.runID)
	defer span.End()

	start := p.now()
	collectors := p.registry.Collectors()

	p.namedLogger().With(log.KeyCount, len(collectors)).
		Infof("starting collection with %d workers", p.workersPoolSize)

	jobs := make(chan int, len(collectors))
	for i := range collectors {
		jobs <- i
	}

	close(jobs)

	p.state.Store(int32(Collecting))

	results := make([]taskResult, len(collectors))

	var wg sync.WaitGroup

	for i := range min(p.workersPoolSize, max(len(collectors), 1)) {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			for j := range jobs {
				results[j] = p.runTask(ctx, workerID, collectors[j])
			}
		}(i)
	}

	wg.Wait()

	p.state.Store(int32(Aggregating))

	result := p.aggregate(results)
	recordRun(result, p.now().Sub(start))

	p.state.Store(int32(Done))

	p.namedLogger().With(log.KeyCount, result.Summary.TotalInstances).
		With(log.KeyResult, resultValue(result.Success)).
		Infof("collection finished with %d failed providers", len(result.Summary.Errors))

	return result, nil
}

func (p *Process) aggregate(results []taskResult) *Result {
	instances := make([]resource.Instance, 0)
	failures := make(map[resource.Provider]error)

	for _, r := range results {
		if r.err != nil {
			failures[r.provider] = r.err
			continue
		}

		instances = append(instances, r.instances...)
	}

	summary := Summarize(instances, failures, p.now())

	return &Result{
		Instances: instances,
		Summary:   summary,
		Success:   summary.TotalInstances > 0,
	}
}

func (p *Process) namedLogger() *zap.SugaredLogger {
	return p.logger.Named("process").With("component", "orchestrator").With(log.KeyRunID, p.runID)
}

func resultValue(success bool) string {
	if success {
		return log.ValueSuccess
	}

	return log.ValueFail
}
