// Package gamerule queries, sets, and verifies server gamerules. The
// protocol gives no transactional guarantee that a set took effect, so
// verification is a query-then-compare loop.
package gamerule

import (
	"context"
	"strings"

	"github.com/craftops/craftctl/internal/debug"
	"github.com/craftops/craftctl/internal/mc"
)

// DefaultVerifyAttempts bounds the query-compare loop in Verify.
const DefaultVerifyAttempts = 3

// Runner is the slice of the executor the verifier needs.
type Runner interface {
	Execute(ctx context.Context, cmd mc.Command, opts mc.ExecOptions) mc.ExecutionResult
}

// Verifier reads and writes gamerules through one executor, caching values
// per instance. The cache is invalidated, never updated in place, whenever
// this verifier issues a state-changing command for a rule, forcing the
// next read to hit the server.
type Verifier struct {
	run   Runner
	cache map[string]string
}

// NewVerifier builds a Verifier bound to run. The verifier is not safe for
// concurrent use; each operation owns its own instance.
func NewVerifier(run Runner) *Verifier {
	return &Verifier{
		run:   run,
		cache: make(map[string]string),
	}
}

// Get returns the current value of rule, from cache when this verifier has
// read it before and has not written it since.
func (v *Verifier) Get(ctx context.Context, rule string) (string, bool) {
	if val, ok := v.cache[rule]; ok {
		debug.Logf("gamerule: cache hit for %s = %s\n", rule, val)
		return val, true
	}
	return v.query(ctx, rule)
}

// query fetches the rule value from the server and caches it.
func (v *Verifier) query(ctx context.Context, rule string) (string, bool) {
	result := v.run.Execute(ctx, mc.GameruleQuery(rule), mc.ExecOptions{})
	if !result.Success {
		debug.Logf("gamerule: query %s failed: %s\n", rule, result.Error)
		return "", false
	}
	val, ok := mc.ParseGameruleValue(result.RawResponse)
	if !ok {
		debug.Logf("gamerule: unparseable query response for %s: %q\n", rule, result.RawResponse)
		return "", false
	}
	v.cache[rule] = val
	return val, true
}

// Set issues the state-changing command and invalidates the cached value
// for that rule so the next Get reads fresh.
func (v *Verifier) Set(ctx context.Context, rule, value string) mc.ExecutionResult {
	delete(v.cache, rule)
	result := v.run.Execute(ctx, mc.GameruleSet(rule, value), mc.ExecOptions{})
	// Invalidate again in case a concurrent Get repopulated the entry while
	// the command was in flight.
	delete(v.cache, rule)
	return result
}

// Verify checks that rule reads back as expected, comparing
// case-insensitively. A just-issued change can lag by one round trip, so a
// mismatch is re-queried up to maxAttempts times with no added delay beyond
// the executor's own timeouts. Returns false only after maxAttempts failed
// comparisons.
func (v *Verifier) Verify(ctx context.Context, rule, expected string, maxAttempts int) bool {
	if maxAttempts < 1 {
		maxAttempts = DefaultVerifyAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var val string
		var ok bool
		if attempt == 0 {
			val, ok = v.Get(ctx, rule)
		} else {
			// Retries bypass the cache: the first read may have been stale.
			delete(v.cache, rule)
			val, ok = v.query(ctx, rule)
		}
		if ok && strings.EqualFold(val, expected) {
			return true
		}
		debug.Logf("gamerule: verify %s attempt %d: got %q, want %q\n", rule, attempt+1, val, expected)
	}
	return false
}
