package mc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/craftops/craftctl/internal/rcon"
)

// ErrorCategory buckets a failure for retry policy and user-facing
// diagnostics. Connection and timeout categories are transient; command
// categories are surfaced immediately without retry.
type ErrorCategory string

const (
	CategoryConnectionRefused ErrorCategory = "connection_refused"
	CategoryAuthFailed        ErrorCategory = "auth_failed"
	CategoryConnectTimeout    ErrorCategory = "connect_timeout"
	CategoryConnectionFailed  ErrorCategory = "connection_failed"
	CategoryCommandTimeout    ErrorCategory = "command_timeout"
	CategoryInvalidCommand    ErrorCategory = "invalid_command"
	CategoryPermissionDenied  ErrorCategory = "permission_denied"
	CategoryTargetNotFound    ErrorCategory = "target_not_found"
	CategoryExecutionFailed   ErrorCategory = "execution_failed"
)

// Retryable reports whether another attempt can plausibly succeed. Syntax
// errors, missing permissions, and absent targets never heal on retry.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case CategoryInvalidCommand, CategoryPermissionDenied, CategoryTargetNotFound:
		return false
	}
	return true
}

// errorRule maps error-text keywords to a category. Rules are matched in
// order; the first hit wins, so more specific keywords come first.
type errorRule struct {
	keywords []string
	category ErrorCategory
}

// transportRules classify Go transport errors by message text. Used only as
// a fallback after sentinel and net.Error checks.
var transportRules = []errorRule{
	{[]string{"connection refused"}, CategoryConnectionRefused},
	{[]string{"authentication failed"}, CategoryAuthFailed},
	{[]string{"connection reset", "broken pipe", "eof"}, CategoryConnectionFailed},
	{[]string{"dial"}, CategoryConnectTimeout},
	{[]string{"i/o timeout", "deadline exceeded"}, CategoryCommandTimeout},
}

// responseRules classify server response text already known to be a
// failure. More specific phrasings come before generic ones.
var responseRules = []errorRule{
	{[]string{"unknown command", "incorrect argument", "invalid", "expected", "syntax"}, CategoryInvalidCommand},
	{[]string{"permission", "not allowed", "operator"}, CategoryPermissionDenied},
	{[]string{"no player was found", "no entity was found", "not found"}, CategoryTargetNotFound},
}

func matchRules(rules []errorRule, text string) (ErrorCategory, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// categorizeTransportError buckets a connection or command-transport error.
func categorizeTransportError(err error) ErrorCategory {
	switch {
	case errors.Is(err, rcon.ErrAuthFailed):
		return CategoryAuthFailed
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryCommandTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryCommandTimeout
	}

	if cat, ok := matchRules(transportRules, err.Error()); ok {
		return cat
	}
	return CategoryConnectionFailed
}

// categorizeResponseFailure buckets a server response that Classify already
// judged a failure.
func categorizeResponseFailure(raw string) ErrorCategory {
	if cat, ok := matchRules(responseRules, raw); ok {
		return cat
	}
	return CategoryExecutionFailed
}

// suggestions returns category-specific recovery steps, ordered by how
// likely they are to help.
func (c ErrorCategory) suggestions(kind OperationKind) []string {
	switch c {
	case CategoryConnectionRefused:
		return []string{
			"Verify the server is running and reachable",
			"Check that enable-rcon=true is set in server.properties",
			"Confirm the RCON port matches rcon.port in server.properties",
		}
	case CategoryAuthFailed:
		return []string{
			"Check the RCON password against rcon.password in server.properties",
			"Restart the server if the password was changed recently",
		}
	case CategoryConnectTimeout:
		return []string{
			"Verify the host address and port",
			"Check firewall rules between this machine and the server",
		}
	case CategoryConnectionFailed:
		return []string{
			"Check network connectivity to the server",
			"Retry once the server has finished starting up",
		}
	case CategoryCommandTimeout:
		if kind == KindFill {
			return []string{
				"Region may be too large for a single fill; it will be auto-chunked",
				"Reduce the chunk edge length if timeouts persist",
			}
		}
		return []string{
			"The server may be overloaded; retry shortly",
			"Increase the command timeout for slow operations",
		}
	case CategoryPermissionDenied:
		return []string{
			"Grant operator permission to the RCON user",
			"Check enable-command-block and op-permission-level settings",
		}
	case CategoryInvalidCommand:
		return []string{
			"Check the command syntax against the server version's documentation",
			"Verify block and entity names are valid for this server version",
		}
	case CategoryTargetNotFound:
		return []string{
			"Verify the target selector matches an online player or entity",
		}
	default:
		return []string{
			"Inspect the raw server response for details",
			"Run the command manually in the server console to reproduce",
		}
	}
}

// formatFailure renders the terse error plus a numbered recovery list. This
// is the string that lands in ExecutionResult.Error.
func formatFailure(terse string, cat ErrorCategory, kind OperationKind) string {
	sugg := cat.suggestions(kind)
	if len(sugg) == 0 {
		return terse
	}
	var b strings.Builder
	b.WriteString(terse)
	b.WriteString("\nRecovery suggestions:")
	for i, s := range sugg {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, s)
	}
	return b.String()
}
