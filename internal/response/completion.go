// Package response turns free-form AI backend text into something the rest of
// gch can use: a single-line shell command, or a validated quiz question.
// Everything here is pure; no I/O, no logging.
package response

import (
	"errors"
	"strings"
)

// ErrNoCompletion means the backend text held nothing usable as a command.
var ErrNoCompletion = errors.New("response: no completion")

// skipMarkers flag explanatory lines. Matched case-insensitively.
var skipMarkers = []string{"here", "the completed", "command:", "output:", "result:"}

// proseLeaders mark lines that introduce rather than contain a command.
var proseLeaders = []string{"Note:", "Example:", "Usage:"}

// ParseCompletion extracts the most likely shell command from raw backend
// output. The first line that is neither explanatory nor a label wins. When
// none qualifies the first line is used, minus any leading label such as
// "Here is the command:". Unbalanced quotes are closed with BalanceQuotes.
func ParseCompletion(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoCompletion
	}

	lines := splitLines(raw)
	if len(lines) == 0 {
		return "", ErrNoCompletion
	}

	for _, line := range lines {
		if !hasSkipMarker(line) && looksLikeCommand(line) {
			return BalanceQuotes(line), nil
		}
	}

	return BalanceQuotes(stripLabel(lines[0])), nil
}

// stripLabel drops an explanatory label ending in ": " from line, keeping
// line unchanged when nothing follows the label.
func stripLabel(line string) string {
	if !hasSkipMarker(line) {
		return line
	}
	if _, rest, found := strings.Cut(line, ": "); found {
		if rest = strings.TrimSpace(rest); rest != "" {
			return rest
		}
	}
	return line
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func hasSkipMarker(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range skipMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func looksLikeCommand(line string) bool {
	if line == "" || strings.HasSuffix(line, ":") {
		return false
	}
	for _, p := range proseLeaders {
		if strings.HasPrefix(line, p) {
			return false
		}
	}
	return true
}

// BalanceQuotes closes an odd count of single quotes and, independently, an
// odd count of double quotes by appending the missing quote. It is a repair
// for truncated output, not a shell parser: escaped quotes are counted too.
func BalanceQuotes(cmd string) string {
	if strings.Count(cmd, "'")%2 == 1 {
		cmd += "'"
	}
	if strings.Count(cmd, `"`)%2 == 1 {
		cmd += `"`
	}
	return cmd
}
