package mc

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/craftops/craftctl/internal/debug"
	"github.com/craftops/craftctl/internal/rcon"
	"github.com/craftops/craftctl/internal/telemetry"
)

// DefaultMaxAttempts is the total attempt budget per command (first try
// plus retries).
const DefaultMaxAttempts = 3

// CommandConn is one authenticated connection able to run commands.
// Satisfied by *rcon.Conn; faked in tests.
type CommandConn interface {
	Execute(ctx context.Context, command string) (string, error)
	Close() error
}

// DialFunc opens a fresh authenticated connection. The executor calls it
// once per attempt and never reuses a connection across attempts.
type DialFunc func(ctx context.Context) (CommandConn, error)

// Dialer builds a DialFunc for an RCON endpoint. The attempt context bounds
// connection establishment as well as the command itself.
func Dialer(addr, password string, opts rcon.Options) DialFunc {
	return func(ctx context.Context) (CommandConn, error) {
		return rcon.Dial(ctx, addr, password, opts)
	}
}

// ExecOptions tunes one Execute call. Zero values pick kind defaults.
type ExecOptions struct {
	Timeout     time.Duration // per-attempt deadline; 0 = kind default
	MaxAttempts int           // total attempts; 0 = DefaultMaxAttempts
}

// Executor dispatches single commands with per-attempt deadlines,
// exponential backoff between attempts, and categorized failure reporting.
// It is safe for concurrent use: each call opens its own connection.
type Executor struct {
	dial  DialFunc
	sleep func(time.Duration)

	tracer   trace.Tracer
	commands metric.Int64Counter
	retries  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewExecutor builds an Executor around dial.
func NewExecutor(dial DialFunc) *Executor {
	m := telemetry.Meter("")
	commands, _ := m.Int64Counter("craftctl.commands",
		metric.WithDescription("Commands executed, by kind and outcome"))
	retries, _ := m.Int64Counter("craftctl.command.retries",
		metric.WithDescription("Retry attempts beyond the first try"))
	duration, _ := m.Float64Histogram("craftctl.command.duration",
		metric.WithDescription("Command wall time including retries"),
		metric.WithUnit("s"))

	return &Executor{
		dial:     dial,
		sleep:    time.Sleep,
		tracer:   telemetry.Tracer(""),
		commands: commands,
		retries:  retries,
		duration: duration,
	}
}

// newCommandBackoff returns the delay schedule between attempts: 1s, 2s,
// 4s, ... BackOff implementations are stateful; always use a fresh one.
func newCommandBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Execute runs one command to completion. It never returns an error: every
// failure mode becomes a non-Success result whose Error field carries a
// terse message plus numbered recovery suggestions.
//
// Retried commands may double-apply when the first attempt succeeded but
// the response was lost; callers needing idempotency use fill semantics,
// where re-filling an already-filled region only wastes time.
func (e *Executor) Execute(ctx context.Context, cmd Command, opts ExecOptions) ExecutionResult {
	start := time.Now()

	result := ExecutionResult{Command: cmd.Text}
	if cmd.Text == "" {
		result.Error = formatFailure("empty command", CategoryInvalidCommand, cmd.Kind)
		return result
	}

	ctx, span := e.tracer.Start(ctx, "command.execute",
		trace.WithAttributes(attribute.String("kind", string(cmd.Kind))))
	defer span.End()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cmd.Kind.DefaultTimeout()
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	bo := newCommandBackoff()
	var lastCategory ErrorCategory
	var lastTerse string

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := bo.NextBackOff()
			if delay == backoff.Stop {
				break
			}
			debug.Logf("executor: attempt %d for %q in %v\n", attempt+1, cmd.Text, delay)
			e.sleep(delay)
			result.Retries++
		}

		raw, err := e.attempt(ctx, cmd.Text, timeout)
		if err != nil {
			lastCategory = categorizeTransportError(err)
			lastTerse = err.Error()
			debug.Logf("executor: attempt %d failed (%s): %v\n", attempt+1, lastCategory, err)
			if !lastCategory.Retryable() {
				break
			}
			continue
		}

		result.RawResponse = raw
		if !Classify(raw) {
			lastCategory = categorizeResponseFailure(raw)
			lastTerse = fmt.Sprintf("command rejected by server: %s", collapse(raw))
			debug.Logf("executor: attempt %d rejected (%s): %q\n", attempt+1, lastCategory, raw)
			if !lastCategory.Retryable() {
				break
			}
			continue
		}

		result.Success = true
		result.UnitsAffected = ParseUnitsAffected(raw)
		result.ExecutionTime = time.Since(start)
		e.record(ctx, cmd.Kind, "success", result)
		return result
	}

	result.Success = false
	result.Error = formatFailure(lastTerse, lastCategory, cmd.Kind)
	result.ExecutionTime = time.Since(start)
	e.record(ctx, cmd.Kind, string(lastCategory), result)
	return result
}

// attempt runs one dial-execute-close cycle under its own deadline. The
// connection is discarded afterward even on success; a deadline expiry
// abandons it rather than trying to resynchronize the stream.
func (e *Executor) attempt(ctx context.Context, command string, timeout time.Duration) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := e.dial(attemptCtx)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	return conn.Execute(attemptCtx, command)
}

func (e *Executor) record(ctx context.Context, kind OperationKind, outcome string, r ExecutionResult) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("retries", r.Retries),
	)
	attrs := metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcome),
	)
	e.commands.Add(ctx, 1, attrs)
	if r.Retries > 0 {
		e.retries.Add(ctx, int64(r.Retries), attrs)
	}
	e.duration.Record(ctx, r.ExecutionTime.Seconds(), attrs)
}

// collapse flattens a multi-line response into one line for terse errors.
func collapse(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
