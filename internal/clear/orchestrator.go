// Package clear drives large region-clear operations: it partitions the
// site volume into protocol-safe chunks, executes each chunk with its own
// timeout and retry budget, restores the ground layer afterward, and
// aggregates per-chunk outcomes under a global wall-clock budget.
package clear

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/craftops/craftctl/internal/debug"
	"github.com/craftops/craftctl/internal/mc"
	"github.com/craftops/craftctl/internal/region"
	"github.com/craftops/craftctl/internal/telemetry"
)

// Defaults for the clear operation.
const (
	DefaultChunkTimeout  = 30 * time.Second
	DefaultChunkAttempts = 3
	DefaultGlobalBudget  = 5 * time.Minute
	DefaultClearBlock    = "air"
	DefaultGroundBlock   = "grass_block"
	DefaultGroundDepth   = 1

	connectAttempts = 3
	connectTimeout  = 10 * time.Second
)

// Runner is the slice of the executor the orchestrator needs.
type Runner interface {
	Execute(ctx context.Context, cmd mc.Command, opts mc.ExecOptions) mc.ExecutionResult
}

// Options configures one clear operation.
type Options struct {
	Site          region.Box    // full site volume, ground layer included
	GroundDepth   int           // bottom layers restored as terrain; 0 = DefaultGroundDepth
	ClearBlock    string        // block for the clear pass; "" = air
	GroundBlock   string        // block for the restore pass; "" = grass_block
	MaxEdge       int           // chunk edge limit; 0 = region.DefaultMaxEdge
	ChunkTimeout  time.Duration // per-chunk attempt deadline; 0 = 30s
	ChunkAttempts int           // per-chunk attempt budget; 0 = 3
	GlobalBudget  time.Duration // wall-clock budget for the whole operation; 0 = 5m
	Parallelism   int           // concurrent chunk workers; <= 1 means sequential
}

func (o Options) withDefaults() Options {
	if o.GroundDepth <= 0 {
		o.GroundDepth = DefaultGroundDepth
	}
	if o.ClearBlock == "" {
		o.ClearBlock = DefaultClearBlock
	}
	if o.GroundBlock == "" {
		o.GroundBlock = DefaultGroundBlock
	}
	if o.MaxEdge <= 0 {
		o.MaxEdge = region.DefaultMaxEdge
	}
	if o.ChunkTimeout <= 0 {
		o.ChunkTimeout = DefaultChunkTimeout
	}
	if o.ChunkAttempts <= 0 {
		o.ChunkAttempts = DefaultChunkAttempts
	}
	if o.GlobalBudget <= 0 {
		o.GlobalBudget = DefaultGlobalBudget
	}
	return o
}

// ChunkResult is the outcome of one chunk, success or not. Chunk failures
// are contained here; they never propagate as errors.
type ChunkResult struct {
	Chunk         region.Chunk `json:"chunk"`
	Cleared       bool         `json:"cleared"`
	UnitsAffected int          `json:"units_affected"`
	Attempts      int          `json:"attempts"`
	Error         string       `json:"error,omitempty"`
}

// Result aggregates a whole clear operation. Owned by the orchestrator
// until returned, read-only afterward.
type Result struct {
	TotalChunks        int           `json:"total_chunks"`
	ChunksSucceeded    int           `json:"chunks_succeeded"`
	ChunksFailed       int           `json:"chunks_failed"`
	TotalUnitsAffected int           `json:"total_units_affected"`
	Elapsed            time.Duration `json:"elapsed"`
	GroundRestored     bool          `json:"ground_restored"`
	TimedOut           bool          `json:"timed_out"`
	ConnectError       string        `json:"connect_error,omitempty"`
	Chunks             []ChunkResult `json:"chunks,omitempty"`
}

// Orchestrator runs clear operations. Safe to reuse across operations; all
// per-operation state lives in Run.
type Orchestrator struct {
	run  Runner
	opts Options
	now  func() time.Time

	tracer        trace.Tracer
	chunkOutcomes metric.Int64Counter
}

// New builds an orchestrator for one site configuration.
func New(run Runner, opts Options) *Orchestrator {
	m := telemetry.Meter("")
	chunkOutcomes, _ := m.Int64Counter("craftctl.clear.chunks",
		metric.WithDescription("Chunk clear outcomes, by pass and result"))

	return &Orchestrator{
		run:           run,
		opts:          opts.withDefaults(),
		now:           time.Now,
		tracer:        telemetry.Tracer(""),
		chunkOutcomes: chunkOutcomes,
	}
}

// Run drives the operation through its phases: connect probe, clear pass,
// ground restoration, aggregation. Individual chunk failures never abort a
// pass; only a failed connect probe or the global budget ends the run
// early, and both still return partial results rather than an error.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	start := o.now()
	result := &Result{}

	ctx, span := o.tracer.Start(ctx, "clear.run",
		trace.WithAttributes(attribute.Int("site.volume", o.opts.Site.Volume())))
	defer func() {
		span.SetAttributes(
			attribute.Int("chunks.total", result.TotalChunks),
			attribute.Int("chunks.failed", result.ChunksFailed),
			attribute.Bool("timed_out", result.TimedOut),
		)
		span.End()
	}()

	debug.Logf("clear: connecting probe for site %v\n", o.opts.Site)
	if probe := o.connect(ctx); !probe.Success {
		result.ConnectError = probe.Error
		result.Elapsed = o.now().Sub(start)
		debug.Logf("clear: connect probe failed: %s\n", probe.Error)
		return result
	}

	clearVol, groundVol, hasGround := o.splitSite()

	debug.Logf("clear: clearing %v with %s\n", clearVol, o.opts.ClearBlock)
	clearChunks := region.Partition(clearVol, o.opts.MaxEdge, o.opts.ClearBlock, "")
	clearResults, timedOut := o.runPass(ctx, "clear", clearChunks, start)
	o.collect(result, clearResults)
	result.TimedOut = timedOut

	groundOK := false
	if hasGround && !result.TimedOut {
		debug.Logf("clear: restoring ground %v with %s\n", groundVol, o.opts.GroundBlock)
		groundChunks := region.Partition(groundVol, o.opts.MaxEdge, o.opts.GroundBlock, "")
		groundResults, groundTimedOut := o.runPass(ctx, "ground", groundChunks, start)
		o.collect(result, groundResults)
		result.TimedOut = result.TimedOut || groundTimedOut

		groundOK = !groundTimedOut && allCleared(groundResults)
	}
	result.GroundRestored = groundOK || !hasGround

	result.Elapsed = o.now().Sub(start)
	debug.Logf("clear: done: %d/%d chunks ok, %d blocks, timedOut=%v\n",
		result.ChunksSucceeded, result.TotalChunks, result.TotalUnitsAffected, result.TimedOut)
	return result
}

// connect probes the server before any chunk work. The executor's own
// retry policy supplies the three attempts with exponential backoff.
func (o *Orchestrator) connect(ctx context.Context) mc.ExecutionResult {
	return o.run.Execute(ctx, mc.Generic("seed"), mc.ExecOptions{
		Timeout:     connectTimeout,
		MaxAttempts: connectAttempts,
	})
}

// splitSite carves the site into the volume to clear and the ground layer
// to restore. A site shorter than the ground depth has no clear volume
// above the ground.
func (o *Orchestrator) splitSite() (clearVol, groundVol region.Box, hasGround bool) {
	site := o.opts.Site
	if site.SpanY() <= o.opts.GroundDepth {
		// Nothing above ground; clear the whole site and skip restoration.
		return site, region.Box{}, false
	}
	groundTop := site.Y1 + o.opts.GroundDepth - 1
	groundVol = region.Box{X1: site.X1, Y1: site.Y1, Z1: site.Z1, X2: site.X2, Y2: groundTop, Z2: site.Z2}
	clearVol = region.Box{X1: site.X1, Y1: groundTop + 1, Z1: site.Z1, X2: site.X2, Y2: site.Y2, Z2: site.Z2}
	return clearVol, groundVol, true
}

// runPass executes one chunk list, sequentially or through a bounded worker
// pool. The global budget is checked before each dispatch; in-flight chunks
// are allowed to finish rather than being killed mid-flight. Order of the
// returned results is not guaranteed under parallel execution.
func (o *Orchestrator) runPass(ctx context.Context, pass string, chunks []region.Chunk, start time.Time) ([]ChunkResult, bool) {
	if o.opts.Parallelism <= 1 {
		return o.runSequential(ctx, pass, chunks, start)
	}
	return o.runParallel(ctx, pass, chunks, start)
}

func (o *Orchestrator) runSequential(ctx context.Context, pass string, chunks []region.Chunk, start time.Time) ([]ChunkResult, bool) {
	results := make([]ChunkResult, 0, len(chunks))
	for _, chunk := range chunks {
		if o.overBudget(start) {
			debug.Logf("clear: global budget exhausted, %d of %d %s chunks dispatched\n",
				len(results), len(chunks), pass)
			return results, true
		}
		results = append(results, o.clearChunk(ctx, pass, chunk))
	}
	return results, false
}

func (o *Orchestrator) runParallel(ctx context.Context, pass string, chunks []region.Chunk, start time.Time) ([]ChunkResult, bool) {
	var (
		mu      sync.Mutex
		results []ChunkResult
		g       errgroup.Group
	)
	g.SetLimit(o.opts.Parallelism)

	timedOut := false
	for _, chunk := range chunks {
		if o.overBudget(start) {
			mu.Lock()
			timedOut = true
			mu.Unlock()
			break
		}
		g.Go(func() error {
			// Waiting for a worker slot can outlive the budget; re-check
			// before doing chunk work.
			if o.overBudget(start) {
				mu.Lock()
				timedOut = true
				mu.Unlock()
				return nil
			}
			r := o.clearChunk(ctx, pass, chunk)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			// Chunk failures are recorded, never returned: one worker's
			// failure must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	return results, timedOut
}

// clearChunk runs one chunk to completion and always returns a result,
// never an error.
func (o *Orchestrator) clearChunk(ctx context.Context, pass string, chunk region.Chunk) ChunkResult {
	exec := o.run.Execute(ctx, mc.FillChunk(chunk), mc.ExecOptions{
		Timeout:     o.opts.ChunkTimeout,
		MaxAttempts: o.opts.ChunkAttempts,
	})

	cr := ChunkResult{
		Chunk:         chunk,
		Cleared:       exec.Success,
		UnitsAffected: exec.UnitsAffected,
		Attempts:      exec.Retries + 1,
		Error:         exec.Error,
	}

	outcome := "success"
	if !cr.Cleared {
		outcome = "failure"
	}
	o.chunkOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pass", pass),
		attribute.String("outcome", outcome),
	))
	return cr
}

func (o *Orchestrator) overBudget(start time.Time) bool {
	return o.now().Sub(start) > o.opts.GlobalBudget
}

// collect folds pass results into the aggregate. Pure summation, so the
// completion order of parallel chunks does not matter.
func (o *Orchestrator) collect(result *Result, chunkResults []ChunkResult) {
	for _, cr := range chunkResults {
		result.TotalChunks++
		if cr.Cleared {
			result.ChunksSucceeded++
		} else {
			result.ChunksFailed++
		}
		result.TotalUnitsAffected += cr.UnitsAffected
		result.Chunks = append(result.Chunks, cr)
	}
}

func allCleared(results []ChunkResult) bool {
	for _, r := range results {
		if !r.Cleared {
			return false
		}
	}
	return true
}
