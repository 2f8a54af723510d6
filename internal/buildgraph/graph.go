// SPDX-License-Identifier: MPL-2.0

// Package buildgraph runs named operations in dependency order, skipping
// those whose inputs and outputs are unchanged since their last successful
// run. It is the small host build graph genlayout needs, not a general
// purpose build tool.
package buildgraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/genlayout/genlayout/internal/dag"
)

var (
	// ErrDuplicateOperation is returned when two operations share a name.
	ErrDuplicateOperation = errors.New("duplicate operation")
	// ErrUnknownDependency is returned when an operation depends on a name
	// that was never registered.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrNoAction is returned for an operation registered without an action.
	ErrNoAction = errors.New("operation has no action")
)

// Status is the outcome of one operation in a run.
type Status uint8

const (
	// StatusSkipped means the operation did not start: dry run, or an
	// earlier failure stopped the run.
	StatusSkipped Status = iota
	// StatusUpToDate means inputs and outputs matched the last record.
	StatusUpToDate
	// StatusExecuted means the action and its post-steps ran successfully.
	StatusExecuted
	// StatusFailed means the action or a post-step returned an error.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusUpToDate:
		return "up-to-date"
	case StatusExecuted:
		return "executed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

type (
	// Action is the body of an operation.
	Action func(ctx context.Context) error

	// Operation is one node of the graph. Outputs lists files or
	// directories the operation writes; an operation without outputs is
	// never up to date. DoLast post-steps run after Action, in order, as
	// part of the same operation.
	Operation struct {
		Name      string
		DependsOn []string
		Inputs    []FileSet
		Outputs   []string
		Action    Action
		DoLast    []Action
	}

	// Result is the outcome of one operation.
	Result struct {
		Name     string
		Status   Status
		Duration time.Duration
		Err      error
	}

	// Report lists the results of a run in execution order.
	Report struct {
		Results []Result
	}

	// Option configures a Graph.
	Option func(*Graph)

	// Graph holds registered operations.
	Graph struct {
		ops         map[string]*Operation
		order       []string
		state       *stateStore
		hasher      *hasher
		parallelism int
		logger      *log.Logger
	}
)

// WithStateDir persists up-to-date records under dir. Without it every
// operation runs each time.
func WithStateDir(dir string) Option {
	return func(g *Graph) {
		if dir != "" {
			g.state = &stateStore{dir: dir}
		}
	}
}

// WithParallelism bounds the number of operations running at once. Values
// below one use the number of CPUs.
func WithParallelism(n int) Option {
	return func(g *Graph) { g.parallelism = n }
}

// WithLogger sets the logger used to report operation progress.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithHashCacheSize sets the number of cached file hashes.
func WithHashCacheSize(n int) Option {
	return func(g *Graph) { g.hasher = newHasher(n) }
}

// New returns an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		ops:    make(map[string]*Operation),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.hasher == nil {
		g.hasher = newHasher(DefaultHashCacheSize)
	}
	if g.parallelism < 1 {
		g.parallelism = runtime.NumCPU()
	}
	return g
}

// Register adds op. Dependencies may be registered later; they are checked
// when the graph runs.
func (g *Graph) Register(op Operation) error {
	if op.Name == "" {
		return errors.New("operation name must not be empty")
	}
	if _, ok := g.ops[op.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOperation, op.Name)
	}
	if op.Action == nil {
		return fmt.Errorf("%w: %s", ErrNoAction, op.Name)
	}
	g.ops[op.Name] = &op
	g.order = append(g.order, op.Name)
	return nil
}

// AppendDoLast adds a post-step to a registered operation.
func (g *Graph) AppendDoLast(name string, step Action) error {
	op, ok := g.ops[name]
	if !ok {
		return fmt.Errorf("%w: %s", dag.ErrUnknownNode, name)
	}
	op.DoLast = append(op.DoLast, step)
	return nil
}

// Names returns the registered operation names in registration order.
func (g *Graph) Names() []string { return append([]string(nil), g.order...) }

// Operation returns the registered operation called name.
func (g *Graph) Operation(name string) (Operation, bool) {
	op, ok := g.ops[name]
	if !ok {
		return Operation{}, false
	}
	return *op, true
}

// Plan returns the operations a run of targets would visit, dependencies
// first. No targets means every operation.
func (g *Graph) Plan(targets ...string) ([]string, error) {
	d := dag.New()
	for _, name := range g.order {
		d.AddNode(name)
	}
	for _, name := range g.order {
		for _, dep := range g.ops[name].DependsOn {
			if _, ok := g.ops[dep]; !ok {
				return nil, fmt.Errorf("%s: %w: %s", name, ErrUnknownDependency, dep)
			}
			d.AddEdge(dep, name)
		}
	}
	order, err := d.TopologicalSort()
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return order, nil
	}
	keep, err := d.Closure(targets...)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(keep))
	for _, n := range keep {
		selected[n] = true
	}
	out := order[:0:0]
	for _, n := range order {
		if selected[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

// DryRun reports the plan for targets with every operation skipped. No
// action runs and no record changes.
func (g *Graph) DryRun(targets ...string) (Report, error) {
	plan, err := g.Plan(targets...)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Results: make([]Result, 0, len(plan))}
	for _, name := range plan {
		g.logger.Info("would run", "operation", name)
		rep.Results = append(rep.Results, Result{Name: name, Status: StatusSkipped})
	}
	return rep, nil
}

// Run executes targets and their dependencies. Independent operations run
// in parallel; the first failure cancels the rest and is returned. The
// report covers every planned operation either way.
func (g *Graph) Run(ctx context.Context, targets ...string) (Report, error) {
	plan, err := g.Plan(targets...)
	if err != nil {
		return Report{}, err
	}

	done := make(map[string]chan struct{}, len(plan))
	for _, name := range plan {
		done[name] = make(chan struct{})
	}
	results := make(map[string]*Result, len(plan))
	for _, name := range plan {
		results[name] = &Result{Name: name, Status: StatusSkipped}
	}

	var mu sync.Mutex
	sem := semaphore.NewWeighted(int64(g.parallelism))
	eg, egCtx := errgroup.WithContext(ctx)
	for _, name := range plan {
		op := g.ops[name]
		eg.Go(func() error {
			defer close(done[name])
			for _, dep := range op.DependsOn {
				select {
				case <-done[dep]:
				case <-egCtx.Done():
					return egCtx.Err()
				}
				mu.Lock()
				ok := results[dep].Status == StatusExecuted || results[dep].Status == StatusUpToDate
				mu.Unlock()
				if !ok {
					return nil
				}
			}
			if err := sem.Acquire(egCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			if err := egCtx.Err(); err != nil {
				return err
			}

			res := g.execute(egCtx, op)
			mu.Lock()
			*results[name] = res
			mu.Unlock()
			if res.Err != nil {
				return fmt.Errorf("%s: %w", name, res.Err)
			}
			return nil
		})
	}
	runErr := eg.Wait()

	rep := Report{Results: make([]Result, 0, len(plan))}
	for _, name := range plan {
		rep.Results = append(rep.Results, *results[name])
	}
	if runErr == nil {
		runErr = ctx.Err()
	}
	return rep, runErr
}

func (g *Graph) execute(ctx context.Context, op *Operation) Result {
	start := time.Now()
	res := Result{Name: op.Name}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		res.Duration = time.Since(start)
		g.logger.Error("operation failed", "operation", op.Name, "err", err)
		return res
	}

	if g.state != nil && len(op.Outputs) > 0 {
		recorded, err := g.state.fingerprint(op.Name)
		if err != nil {
			return fail(err)
		}
		if recorded != "" {
			current, err := g.hasher.fingerprint(op.Name, op.Inputs, op.Outputs)
			if err != nil {
				return fail(err)
			}
			if current == recorded {
				g.logger.Debug("up to date", "operation", op.Name)
				res.Status = StatusUpToDate
				res.Duration = time.Since(start)
				return res
			}
		}
	}

	if err := g.state.invalidate(op.Name); err != nil {
		return fail(err)
	}
	g.logger.Info("running", "operation", op.Name)
	if err := op.Action(ctx); err != nil {
		return fail(err)
	}
	for _, step := range op.DoLast {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := step(ctx); err != nil {
			return fail(err)
		}
	}
	if g.state != nil && len(op.Outputs) > 0 {
		fp, err := g.hasher.fingerprint(op.Name, op.Inputs, op.Outputs)
		if err != nil {
			return fail(err)
		}
		if err := g.state.record(op.Name, fp); err != nil {
			return fail(err)
		}
	}
	res.Status = StatusExecuted
	res.Duration = time.Since(start)
	g.logger.Debug("finished", "operation", op.Name, "duration", res.Duration)
	return res
}

// Failed returns the failed results.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Lookup returns the result of the named operation.
func (r Report) Lookup(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}
