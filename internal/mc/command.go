// Package mc implements the command-execution engine: single-command
// dispatch with timeout and retry/backoff, response classification, and a
// categorized error taxonomy with recovery suggestions.
package mc

import (
	"fmt"
	"time"

	"github.com/craftops/craftctl/internal/region"
)

// OperationKind tags a command so the executor can pick timeout defaults
// and error-message templates. It carries no other semantics.
type OperationKind string

const (
	KindFill     OperationKind = "fill"
	KindGamerule OperationKind = "gamerule"
	KindGeneric  OperationKind = "generic"
)

// Default timeouts by operation kind. Large fills are slow on the server
// side, so they get a longer leash.
const (
	fillTimeout    = 30 * time.Second
	genericTimeout = 10 * time.Second
)

// DefaultTimeout returns the per-attempt timeout for this kind.
func (k OperationKind) DefaultTimeout() time.Duration {
	if k == KindFill {
		return fillTimeout
	}
	return genericTimeout
}

// Command is one instruction to send to the server. Immutable once built.
type Command struct {
	Text string
	Kind OperationKind
}

// FillChunk builds the fill command for one region chunk.
func FillChunk(c region.Chunk) Command {
	return Command{Text: c.FillCommand(), Kind: KindFill}
}

// GameruleQuery builds the query command for a gamerule.
func GameruleQuery(rule string) Command {
	return Command{Text: "gamerule " + rule, Kind: KindGamerule}
}

// GameruleSet builds the set command for a gamerule.
func GameruleSet(rule, value string) Command {
	return Command{Text: fmt.Sprintf("gamerule %s %s", rule, value), Kind: KindGamerule}
}

// Generic wraps a raw command string.
func Generic(text string) Command {
	return Command{Text: text, Kind: KindGeneric}
}

// ExecutionResult is the outcome of one Execute call. It is produced exactly
// once and never mutated after return; the caller owns it.
type ExecutionResult struct {
	Success       bool          `json:"success"`
	Command       string        `json:"command"`
	RawResponse   string        `json:"raw_response,omitempty"`
	Error         string        `json:"error,omitempty"`
	UnitsAffected int           `json:"units_affected"`
	ExecutionTime time.Duration `json:"execution_time"`
	Retries       int           `json:"retries"`
}
