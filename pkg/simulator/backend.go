package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/qobj"
)

// executeParallelism caps concurrent experiment evolution in Execute.
const executeParallelism = 4

// Backend is a simulated pulse device.
type Backend struct {
	cfg    provider.Configuration
	params Params
	log    logger.Logger
}

// NewBackend builds a simulated backend from a device configuration and
// model parameters. Zero params fall back to the stock model.
func NewBackend(cfg provider.Configuration, params Params, log logger.Logger) *Backend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Backend{cfg: cfg, params: params.withDefaults(), log: log}
}

// Name implements provider.Backend.
func (b *Backend) Name() string { return b.cfg.BackendName }

// Configuration implements provider.Backend.
func (b *Backend) Configuration() provider.Configuration { return b.cfg }

// Status implements provider.Backend. The simulator is always operational
// and queueless.
func (b *Backend) Status(ctx context.Context) (provider.BackendStatus, error) {
	return provider.BackendStatus{Operational: true, Message: "simulator"}, nil
}

// Run implements provider.Backend: it validates the schedule synchronously
// and evolves it on a background goroutine, returning the tracking job.
func (b *Backend) Run(ctx context.Context, sched *pulse.Schedule, opts *provider.RunOpts) (provider.Job, error) {
	normalized, err := provider.NormalizeRunOpts(opts, b.cfg)
	if err != nil {
		return nil, err
	}
	if err := b.validate(sched); err != nil {
		return nil, err
	}
	name := normalized.Name
	if name == "" {
		name = sched.Name()
	}

	// The job owns its own lifetime; cancelling the submit context must
	// not kill an accepted job.
	runCtx, cancel := context.WithCancel(context.Background())
	job := newSimJob(b.cfg.BackendName, name, cancel)
	b.log.Info("job %s: accepted %s on %s", job.id, sched.Name(), b.cfg.BackendName)

	go func() {
		defer cancel()
		job.setStatus(provider.StatusRunning)
		res, err := b.runExperiment(runCtx, sched, normalized, job.id)
		switch {
		case runCtx.Err() != nil:
			b.log.Warning("job %s: cancelled", job.id)
			job.settle(nil, provider.StatusCancelled, provider.ErrJobCancelled)
		case err != nil:
			b.log.Error("job %s: %v", job.id, err)
			job.settle(&provider.Result{
				JobID: job.id, JobName: name, Backend: b.cfg.BackendName,
				Status: provider.StatusError, ErrorText: err.Error(),
			}, provider.StatusError, fmt.Errorf("job %s: %w", job.id, err))
		default:
			b.log.Info("job %s: done (%d shots)", job.id, res.Shots)
			job.settle(res, provider.StatusDone, nil)
		}
	}()
	return job, nil
}

// Execute runs every experiment of an assembled payload and returns their
// results in experiment order. Experiments evolve concurrently on a bounded
// group; a seeded payload derives one sub-seed per experiment so batch runs
// stay reproducible.
func (b *Backend) Execute(ctx context.Context, q *qobj.Qobj) ([]*provider.Result, error) {
	scheds, err := qobj.Disassemble(q)
	if err != nil {
		return nil, err
	}
	opts := provider.RunOpts{
		Shots:      q.Config.Shots,
		MeasLevel:  q.Config.MeasLevel,
		MeasReturn: q.Config.MeasReturn,
		Seed:       q.Config.Seed,
		Name:       q.Header.JobName,
	}
	normalized, err := provider.NormalizeRunOpts(&opts, b.cfg)
	if err != nil {
		return nil, err
	}

	results := make([]*provider.Result, len(scheds))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(executeParallelism)
	for i, sched := range scheds {
		grp.Go(func() error {
			expOpts := normalized
			if expOpts.Seed != 0 {
				expOpts.Seed += int64(i)
			}
			if err := b.validate(sched); err != nil {
				return fmt.Errorf("experiment %d: %w", i, err)
			}
			res, err := b.runExperiment(grpCtx, sched, expOpts, q.ID)
			if err != nil {
				return fmt.Errorf("experiment %d: %w", i, err)
			}
			res.JobName = sched.Name()
			results[i] = res
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runExperiment evolves one schedule and samples its shots.
func (b *Backend) runExperiment(ctx context.Context, sched *pulse.Schedule, opts provider.RunOpts, jobID string) (*provider.Result, error) {
	started := time.Now()
	acqs, err := evolve(sched, b.cfg, b.params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	res := &provider.Result{
		JobID:     jobID,
		JobName:   opts.Name,
		Backend:   b.cfg.BackendName,
		Status:    provider.StatusDone,
		Success:   true,
		Shots:     opts.Shots,
		MeasLevel: opts.MeasLevel,
	}
	sampleShots(res, acqs, opts, b.params, rng)
	res.TimeTaken = time.Since(started).Seconds()
	return res, nil
}

// validate fails fast on schedules the device cannot hold.
func (b *Backend) validate(sched *pulse.Schedule) error {
	if sched == nil || sched.Len() == 0 {
		return provider.ErrEmptySchedule
	}
	for _, ch := range sched.Channels() {
		switch ch.Kind() {
		case pulse.KindDrive, pulse.KindControl, pulse.KindMeasure, pulse.KindAcquire:
			if ch.Index() >= b.cfg.NumQubits {
				return fmt.Errorf("%s on %d-qubit %s: %w",
					ch, b.cfg.NumQubits, b.cfg.BackendName, provider.ErrQubitRange)
			}
		case pulse.KindMemory:
			if ch.Index() >= b.cfg.MemorySlots {
				return fmt.Errorf("%s with %d memory slots: %w",
					ch, b.cfg.MemorySlots, provider.ErrQubitRange)
			}
		}
	}
	return nil
}
