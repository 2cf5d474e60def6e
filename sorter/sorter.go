// Package sorter coordinates discovery, classification and file moves for one
// batch run: it fans work out to a bounded worker pool, tracks progress under
// a single lock, and supports cooperative cancellation.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wudi/textsort/classify"
	"github.com/wudi/textsort/discover"
	"github.com/wudi/textsort/observability"
	"github.com/wudi/textsort/ocr"
)

var (
	// ErrInvalidDir reports a missing or non-directory input/output path.
	// Surfaced before any work starts; no events are emitted for such a run.
	ErrInvalidDir = errors.New("invalid directory")
	// ErrInvalidThreshold reports a density threshold outside (0, 1).
	ErrInvalidThreshold = errors.New("threshold must be in (0, 1)")
	// ErrInvalidCollisionPolicy reports an unknown collision policy value.
	ErrInvalidCollisionPolicy = errors.New("unknown collision policy")
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Outcome summarizes a finished run.
type Outcome struct {
	Status    Status
	Total     int
	Processed int
	Moved     int
}

// Worker pool sizing bounds. The default pool follows the core count clamped
// to [2, 8]; explicit overrides may go up to twice the ceiling.
const (
	minDefaultWorkers = 2
	maxDefaultWorkers = 8
	maxWorkers        = 2 * maxDefaultWorkers
)

// DefaultWorkers returns the default pool size for this machine.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < minDefaultWorkers {
		return minDefaultWorkers
	}
	if n > maxDefaultWorkers {
		return maxDefaultWorkers
	}
	return n
}

// Config carries everything a run needs. Threshold is a fraction of
// non-whitespace recognized characters per image pixel, strictly between 0
// and 1.
type Config struct {
	InputDir  string
	OutputDir string
	Threshold float64
	// Workers is the pool size. Zero selects DefaultWorkers; values above
	// twice the default ceiling are clamped.
	Workers int
	// Parallel false forces a single worker regardless of Workers. Same code
	// path, pool of one.
	Parallel bool
	// Preview enables per-item preview events ahead of classification.
	Preview bool
	// Languages are OCR trained-data hints, e.g. {"deu", "eng"}.
	Languages []string
	// Collision selects destination collision behavior. Empty means
	// CollisionOverwrite.
	Collision CollisionPolicy
	// Timeout bounds a single classification when positive. Zero disables the
	// per-item deadline.
	Timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets the event sink. Defaults to NopSink.
func WithSink(sink Sink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithLogger sets the logger handle. Defaults to a no-op logger.
func WithLogger(log observability.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// Runner executes one batch run. A Runner is good for a single Run call;
// create a new one per batch.
type Runner struct {
	cfg    Config
	engine ocr.Engine
	sink   Sink
	log    observability.Logger

	cancelled atomic.Bool

	// mu guards the counters and their paired event emissions so progress
	// pairs are never observed out of sync, and serializes moves so the
	// collision check stays atomic.
	mu        sync.Mutex
	processed int
	moved     int
	failures  []failure
}

type failure struct {
	path string
	err  error
}

// New constructs a Runner around the given OCR engine.
func New(cfg Config, engine ocr.Engine, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		engine: engine,
		sink:   NopSink{},
		log:    observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stop requests cooperative cancellation: no new items are started, in-flight
// classifications finish. Safe to call from any goroutine, any number of
// times.
func (r *Runner) Stop() {
	r.cancelled.Store(true)
}

// Run executes the batch and blocks until it completes, is cancelled, or
// fails. Per-item errors (OCR, decode, move) are absorbed and logged; only
// orchestration-level failures produce a non-nil error.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if err := r.validate(); err != nil {
		return Outcome{Status: StatusFailed}, err
	}

	items, err := discover.Images(r.cfg.InputDir)
	if err != nil {
		return Outcome{Status: StatusFailed}, fmt.Errorf("discover images: %w", err)
	}
	total := len(items)
	if total == 0 {
		r.sink.StatusText("No image files found in input directory")
		return Outcome{Status: StatusCompleted}, nil
	}

	r.log.Info("run started",
		observability.String("input", r.cfg.InputDir),
		observability.String("output", r.cfg.OutputDir),
		observability.Float64("threshold", r.cfg.Threshold),
		observability.Int("items", total),
		observability.Int("workers", r.workerCount()))

	classifier := classify.New(r.engine, r.cfg.Threshold,
		classify.WithLogger(r.log),
		classify.WithInputOptions(ocr.WithLanguages(r.cfg.Languages...)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount())
	for _, item := range items {
		// Level-triggered poll: once cancellation is observed, queued items
		// are abandoned and the pool winds down after in-flight work.
		if r.stopRequested(gctx) {
			break
		}
		item := item
		g.Go(func() error {
			if r.stopRequested(gctx) {
				return nil
			}
			r.process(gctx, classifier, item, total)
			return nil
		})
	}
	_ = g.Wait()

	return r.finish(ctx, total), nil
}

func (r *Runner) validate() error {
	for _, dir := range []string{r.cfg.InputDir, r.cfg.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidDir, dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %q", ErrInvalidDir, dir)
		}
	}
	if r.cfg.Threshold <= 0 || r.cfg.Threshold >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, r.cfg.Threshold)
	}
	switch r.cfg.Collision {
	case "", CollisionOverwrite, CollisionError:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCollisionPolicy, r.cfg.Collision)
	}
	return nil
}

func (r *Runner) workerCount() int {
	if !r.cfg.Parallel {
		return 1
	}
	n := r.cfg.Workers
	if n < 1 {
		n = DefaultWorkers()
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

func (r *Runner) stopRequested(ctx context.Context) bool {
	return r.cancelled.Load() || ctx.Err() != nil
}

func (r *Runner) process(ctx context.Context, classifier *classify.Classifier, item discover.Item, total int) {
	name := filepath.Base(item.Path)
	if r.cfg.Preview {
		r.sink.Preview(item.Path)
	}
	r.sink.StatusText(fmt.Sprintf("Processing %s (%d/%d)", name, item.Index+1, total))

	cctx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	res := classifier.Classify(cctx, item.Path)

	r.mu.Lock()
	defer r.mu.Unlock()

	movedNow := false
	if res.ContainsText {
		if err := move(item.Path, r.cfg.OutputDir, r.collision()); err != nil {
			r.failures = append(r.failures, failure{path: item.Path, err: err})
			r.log.Error("move failed",
				observability.String("path", item.Path),
				observability.Error("error", err))
		} else {
			movedNow = true
			r.log.Info("moved",
				observability.String("path", item.Path),
				observability.String("output", r.cfg.OutputDir),
				observability.Float64("ratio", res.Ratio))
		}
	}
	if res.Err != nil {
		r.failures = append(r.failures, failure{path: item.Path, err: res.Err})
	}

	r.processed++
	if movedNow {
		r.moved++
	}
	pct := r.processed * 100 / total
	// The 100% event is reserved for the completion path so a cancelled run
	// never reports full progress.
	if pct >= 100 {
		pct = 99
	}
	r.sink.ProgressCount(r.processed, total)
	r.sink.ProgressPercent(pct)
	if movedNow {
		r.sink.StatusText(fmt.Sprintf("Moved %s (contains text)", name))
	}
}

func (r *Runner) collision() CollisionPolicy {
	if r.cfg.Collision == "" {
		return CollisionOverwrite
	}
	return r.cfg.Collision
}

func (r *Runner) finish(ctx context.Context, total int) Outcome {
	r.mu.Lock()
	processed, moved, failures := r.processed, r.moved, r.failures
	r.mu.Unlock()

	if len(failures) > 0 {
		sample := failures
		if len(sample) > 5 {
			sample = sample[:5]
		}
		fields := []observability.Field{observability.Int("failures", len(failures))}
		for _, f := range sample {
			fields = append(fields, observability.Error(f.path, f.err))
		}
		r.log.Warn("run finished with per-item failures", fields...)
	}

	if r.cancelled.Load() || ctx.Err() != nil {
		r.sink.StatusText("Processing stopped")
		r.log.Info("run cancelled",
			observability.Int("processed", processed),
			observability.Int("total", total))
		return Outcome{Status: StatusCancelled, Total: total, Processed: processed, Moved: moved}
	}

	r.sink.ProgressPercent(100)
	r.sink.StatusText("Processing complete")
	r.log.Info("run complete",
		observability.Int("processed", processed),
		observability.Int("moved", moved))
	return Outcome{Status: StatusCompleted, Total: total, Processed: processed, Moved: moved}
}
