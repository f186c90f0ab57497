package clear

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/craftops/craftctl/internal/mc"
	"github.com/craftops/craftctl/internal/region"
)

// funcRunner delegates Execute to a behavior function.
type funcRunner struct {
	mu       sync.Mutex
	commands []string
	behave   func(cmd mc.Command) mc.ExecutionResult
}

func (f *funcRunner) Execute(ctx context.Context, cmd mc.Command, opts mc.ExecOptions) mc.ExecutionResult {
	f.mu.Lock()
	f.commands = append(f.commands, cmd.Text)
	f.mu.Unlock()
	r := f.behave(cmd)
	r.Command = cmd.Text
	return r
}

func okFill(units int) mc.ExecutionResult {
	return mc.ExecutionResult{Success: true, UnitsAffected: units, RawResponse: "Successfully filled blocks"}
}

// threeChunkSite yields one ground layer and a clear volume that partitions
// into exactly three chunks along X.
func threeChunkSite() Options {
	return Options{
		Site:    region.NewBox(0, 0, 0, 95, 1, 0),
		MaxEdge: 32,
	}
}

func TestRunHappyPath(t *testing.T) {
	runner := &funcRunner{behave: func(cmd mc.Command) mc.ExecutionResult {
		if cmd.Kind == mc.KindFill {
			return okFill(100)
		}
		return mc.ExecutionResult{Success: true, RawResponse: "Seed: [12345]"}
	}}

	o := New(runner, threeChunkSite())
	r := o.Run(context.Background())

	// 3 clear chunks + 3 ground chunks.
	if r.TotalChunks != 6 {
		t.Fatalf("TotalChunks = %d, want 6", r.TotalChunks)
	}
	if r.ChunksFailed != 0 || r.ChunksSucceeded != 6 {
		t.Errorf("succeeded/failed = %d/%d, want 6/0", r.ChunksSucceeded, r.ChunksFailed)
	}
	if r.TotalUnitsAffected != 600 {
		t.Errorf("TotalUnitsAffected = %d, want 600", r.TotalUnitsAffected)
	}
	if !r.GroundRestored {
		t.Error("GroundRestored should be true")
	}
	if r.TimedOut {
		t.Error("TimedOut should be false")
	}
}

func TestChunkIsolation(t *testing.T) {
	// The second clear-pass chunk always fails; its neighbors and the
	// ground pass must be unaffected.
	var clearFills int
	runner := &funcRunner{}
	runner.behave = func(cmd mc.Command) mc.ExecutionResult {
		if cmd.Kind != mc.KindFill {
			return mc.ExecutionResult{Success: true, RawResponse: "Seed: [1]"}
		}
		if strings.HasSuffix(cmd.Text, " air") {
			clearFills++
			if clearFills == 2 {
				return mc.ExecutionResult{Success: false, Error: "command rejected by server"}
			}
		}
		return okFill(50)
	}

	o := New(runner, threeChunkSite())
	r := o.Run(context.Background())

	if r.TotalChunks != 6 {
		t.Fatalf("TotalChunks = %d, want 6 (failure must not abort the pass)", r.TotalChunks)
	}
	if r.ChunksFailed != 1 {
		t.Errorf("ChunksFailed = %d, want 1", r.ChunksFailed)
	}
	if r.ChunksSucceeded != 5 {
		t.Errorf("ChunksSucceeded = %d, want 5", r.ChunksSucceeded)
	}
	if !r.GroundRestored {
		t.Error("ground pass should still run and succeed")
	}

	cleared := 0
	for _, cr := range r.Chunks {
		if cr.Chunk.Block == "air" && cr.Cleared {
			cleared++
		}
	}
	if cleared != 2 {
		t.Errorf("cleared clear-pass chunks = %d, want 2", cleared)
	}
}

func TestGlobalBudget(t *testing.T) {
	// Each command consumes three simulated minutes; the 5-minute budget
	// runs out after the first chunk.
	clock := time.Unix(0, 0)
	runner := &funcRunner{}
	runner.behave = func(cmd mc.Command) mc.ExecutionResult {
		clock = clock.Add(3 * time.Minute)
		if cmd.Kind == mc.KindFill {
			return okFill(10)
		}
		return mc.ExecutionResult{Success: true, RawResponse: "Seed: [1]"}
	}

	o := New(runner, threeChunkSite())
	o.now = func() time.Time { return clock }

	r := o.Run(context.Background())
	if !r.TimedOut {
		t.Fatal("TimedOut should be true")
	}
	// Probe advances to 3m; chunk 1 dispatched at 3m and finishes at 6m;
	// chunk 2 is never dispatched.
	if r.TotalChunks != 1 {
		t.Errorf("TotalChunks = %d, want 1 (partial aggregation)", r.TotalChunks)
	}
	if r.GroundRestored {
		t.Error("ground pass must be skipped after timeout")
	}
}

func TestParallelBudgetStopsSlotWaiters(t *testing.T) {
	// Each command burns three simulated minutes. With two workers the
	// third clear chunk only gets a slot once the budget is already gone;
	// it must be skipped rather than dispatched late.
	var mu sync.Mutex
	clock := time.Unix(0, 0)

	runner := &funcRunner{}
	runner.behave = func(cmd mc.Command) mc.ExecutionResult {
		mu.Lock()
		clock = clock.Add(3 * time.Minute)
		mu.Unlock()
		if cmd.Kind == mc.KindFill {
			return okFill(10)
		}
		return mc.ExecutionResult{Success: true, RawResponse: "Seed: [1]"}
	}

	opts := threeChunkSite()
	opts.Parallelism = 2
	o := New(runner, opts)
	o.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	r := o.Run(context.Background())
	if !r.TimedOut {
		t.Fatal("TimedOut should be true")
	}
	// The probe ends at 3m and any chunk fill pushes past the 5m budget,
	// so at most the two first-wave chunks can run.
	if r.TotalChunks < 1 || r.TotalChunks > 2 {
		t.Errorf("TotalChunks = %d, want 1 or 2 (no late dispatch after budget)", r.TotalChunks)
	}
	if r.GroundRestored {
		t.Error("ground pass must be skipped after timeout")
	}
}

func TestConnectFailureEndsOperation(t *testing.T) {
	runner := &funcRunner{behave: func(cmd mc.Command) mc.ExecutionResult {
		return mc.ExecutionResult{Success: false, Error: "connection refused"}
	}}

	o := New(runner, threeChunkSite())
	r := o.Run(context.Background())

	if r.ConnectError == "" {
		t.Fatal("ConnectError should be set")
	}
	if r.TotalChunks != 0 {
		t.Errorf("TotalChunks = %d, want 0 (no chunks processed)", r.TotalChunks)
	}
	if len(runner.commands) != 1 {
		t.Errorf("only the probe should be issued, got %v", runner.commands)
	}
}

func TestParallelAggregationMatchesSequential(t *testing.T) {
	behave := func(cmd mc.Command) mc.ExecutionResult {
		if cmd.Kind == mc.KindFill {
			return okFill(25)
		}
		return mc.ExecutionResult{Success: true, RawResponse: "Seed: [1]"}
	}

	seqRunner := &funcRunner{behave: behave}
	seq := New(seqRunner, threeChunkSite()).Run(context.Background())

	opts := threeChunkSite()
	opts.Parallelism = 4
	parRunner := &funcRunner{behave: behave}
	par := New(parRunner, opts).Run(context.Background())

	if seq.TotalChunks != par.TotalChunks ||
		seq.ChunksSucceeded != par.ChunksSucceeded ||
		seq.TotalUnitsAffected != par.TotalUnitsAffected ||
		seq.GroundRestored != par.GroundRestored {
		t.Errorf("parallel aggregate differs from sequential:\nseq: %+v\npar: %+v", seq, par)
	}
}

func TestSplitSite(t *testing.T) {
	o := New(&funcRunner{behave: func(mc.Command) mc.ExecutionResult { return okFill(0) }}, Options{
		Site:        region.NewBox(0, 60, 0, 10, 70, 10),
		GroundDepth: 2,
	})

	clearVol, groundVol, hasGround := o.splitSite()
	if !hasGround {
		t.Fatal("expected a ground layer")
	}
	if groundVol.Y1 != 60 || groundVol.Y2 != 61 {
		t.Errorf("ground Y = %d..%d, want 60..61", groundVol.Y1, groundVol.Y2)
	}
	if clearVol.Y1 != 62 || clearVol.Y2 != 70 {
		t.Errorf("clear Y = %d..%d, want 62..70", clearVol.Y1, clearVol.Y2)
	}
	if clearVol.Volume()+groundVol.Volume() != o.opts.Site.Volume() {
		t.Error("split volumes must cover the site exactly")
	}
}

func TestFlatSiteSkipsGroundPass(t *testing.T) {
	runner := &funcRunner{behave: func(cmd mc.Command) mc.ExecutionResult {
		if cmd.Kind == mc.KindFill {
			return okFill(10)
		}
		return mc.ExecutionResult{Success: true, RawResponse: "Seed: [1]"}
	}}

	o := New(runner, Options{Site: region.NewBox(0, 64, 0, 10, 64, 10)})
	r := o.Run(context.Background())

	if r.TotalChunks != 1 {
		t.Errorf("TotalChunks = %d, want 1", r.TotalChunks)
	}
	if !r.GroundRestored {
		t.Error("a site with no layer above ground reports GroundRestored")
	}
}
