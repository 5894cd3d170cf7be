package allocator

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/paths"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

var (
	ErrRepositoryRequired = errors.New("allocator: resource store is required")
	ErrPathsRequired      = errors.New("allocator: path resolver is required")
)

// Service plans where a render pass writes its output.
type Service interface {
	Allocate(ctx context.Context, req Request) (*Result, error)
}

// Config captures allocator behaviour toggles.
type Config struct {
	Workers int
	// DryRun computes allocations without reserving files or saving entries.
	DryRun bool
}

// Request selects the resources to allocate for one render kind.
type Request struct {
	ResourceIDs []string
	Kind        resources.RenderKind
	// Reallocate ignores existing non-predicted render entries.
	Reallocate bool
}

// Allocation is the outcome for one resource.
type Allocation struct {
	ResourceID string
	Entry      resources.RenderEntry
	// Conflict is set when the resource did not get its natural file name.
	Conflict bool
	Reused   bool
	Err      error
}

// Result aggregates a run.
type Result struct {
	Allocated   int
	Reused      int
	Failed      int
	Allocations []Allocation
	Errors      []error
	Duration    time.Duration
	DryRun      bool
}

// Dependencies lists the collaborators of the allocator.
type Dependencies struct {
	Repository   interfaces.ResourceStore
	Paths        *paths.Resolver
	Reservations *paths.Reservations
}

// Option configures the service.
type Option func(*service)

// WithLogger sets the allocator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock used for durations.
func WithNow(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

// NewService wires an allocator with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies, opts ...Option) (Service, error) {
	if deps.Repository == nil {
		return nil, ErrRepositoryRequired
	}
	if deps.Paths == nil {
		return nil, ErrPathsRequired
	}
	if deps.Reservations == nil {
		deps.Reservations = paths.NewReservations(deps.Paths)
	}
	s := &service{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

type job struct {
	index int
	id    string
}

func (s *service) Allocate(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	kind := req.Kind.OrDefault()
	result := &Result{
		Allocations: make([]Allocation, len(req.ResourceIDs)),
		DryRun:      s.cfg.DryRun,
	}
	if len(req.ResourceIDs) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	collect := func(index int, outcome Allocation) {
		mu.Lock()
		defer mu.Unlock()
		result.Allocations[index] = outcome
		switch {
		case outcome.Err != nil:
			result.Failed++
			result.Errors = append(result.Errors, outcome.Err)
		case outcome.Reused:
			result.Reused++
		default:
			result.Allocated++
		}
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(len(req.ResourceIDs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					collect(j.index, Allocation{ResourceID: j.id, Err: ctx.Err()})
				default:
					collect(j.index, s.allocateOne(ctx, j.id, kind, req.Reallocate))
				}
			}
		}()
	}

	sent := make([]bool, len(req.ResourceIDs))
dispatch:
	for i, id := range req.ResourceIDs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{index: i, id: id}:
			sent[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	cancelled := ctx.Err()
	if cancelled != nil {
		for i, id := range req.ResourceIDs {
			if !sent[i] {
				collect(i, Allocation{ResourceID: id, Err: cancelled})
			}
		}
	}

	result.Duration = s.now().Sub(start)
	s.logger.Info("allocator.run.completed",
		"render_kind", string(kind),
		"allocated", result.Allocated,
		"reused", result.Reused,
		"failed", result.Failed,
		"dry_run", result.DryRun,
	)
	if cancelled != nil {
		return result, cancelled
	}
	return result, nil
}

func (s *service) allocateOne(ctx context.Context, id string, kind resources.RenderKind, reallocate bool) Allocation {
	outcome := Allocation{ResourceID: id}
	logger := logging.WithResourceContext(s.logger, id, string(kind))

	res, err := s.deps.Repository.GetResource(ctx, id)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if !reallocate {
		existing, err := s.deps.Repository.GetRenderEntry(ctx, res.ID, kind)
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if existing != nil && !existing.Expected {
			outcome.Entry = *existing
			outcome.Reused = true
			return outcome
		}
	}

	target, err := s.deps.Paths.ResourceFilePath(res, kind)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	local := target
	switch owned := s.deps.Paths.OwnsPath(res); {
	case owned && s.cfg.DryRun:
	case owned:
		local, err = s.deps.Reservations.Claim(target)
	case s.cfg.DryRun:
		local, err = s.deps.Paths.ResolveConflict(target)
	default:
		local, err = s.deps.Reservations.Reserve(target)
	}
	if err != nil {
		var exhausted *paths.ExhaustedError
		if errors.As(err, &exhausted) {
			logger.Error("allocator.conflict.exhausted", "path", target, "attempts", exhausted.Attempts)
		}
		outcome.Err = err
		return outcome
	}

	outcome.Entry = resources.RenderEntry{LocalPath: local, Slug: paths.SlugForPath(local)}
	outcome.Conflict = local != target
	if outcome.Conflict {
		logger.Debug("allocator.conflict.resolved", "path", target, "allocated", local)
	}
	if s.cfg.DryRun {
		return outcome
	}
	if err := s.deps.Repository.SaveRenderEntry(ctx, res.ID, kind, outcome.Entry); err != nil {
		s.deps.Reservations.Release(local)
		outcome.Err = err
	}
	return outcome
}

func (s *service) workerCount(jobs int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if jobs > 0 && workers > jobs {
		return jobs
	}
	return workers
}
