package mc

import (
	"regexp"
	"strconv"
	"strings"
)

// The protocol has no structured status field, so success is judged from
// response text. Error keywords take priority over success keywords: a
// mixed response ("Successfully started but failed to complete") is a
// failure. Both lists are matched case-insensitively and in order, so new
// phrasings can be appended without touching control flow.
var (
	errorKeywords = []string{
		"error",
		"fail",
		"unknown",
		"cannot",
		"unable",
		"no player was found",
		"no entity was found",
	}
	successKeywords = []string{
		"successfully",
		"teleported",
		"killed",
		"summoned",
		"gave",
		"placed",
		"currently set to",
	}
)

// Classify judges a raw server response. Empty or whitespace-only responses
// are failures. A non-empty response with no recognizable keyword defaults
// to success: the server phrases many successes in ways we have never seen,
// and a false negative would trigger pointless retries of a command that
// already applied.
func Classify(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range successKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return true
}

// unitsPatterns are the known phrasings that carry an affected-block count,
// most specific first. The first captured integer wins.
var unitsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)successfully filled (\d+) block`),
	regexp.MustCompile(`(?i)filled (\d+) block`),
	regexp.MustCompile(`(?i)(\d+) blocks? (?:filled|changed|affected)`),
}

// ParseUnitsAffected extracts the affected-block count from a response, or
// 0 when no known phrasing matches.
func ParseUnitsAffected(raw string) int {
	for _, re := range unitsPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}

var gamerulePattern = regexp.MustCompile(`(?i)is currently set to:?\s*(\S+)`)

// ParseGameruleValue extracts the value token from a gamerule query
// response ("Gamerule doDaylightCycle is currently set to: false").
func ParseGameruleValue(raw string) (string, bool) {
	m := gamerulePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
