package redact

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// replacement pairs a pattern with its replacement template.
type replacement struct {
	re   *regexp.Regexp
	with string
}

// patterns holds single-line secret-detection regexes in priority order.
var patterns = []replacement{
	// JSON password fields: keep the key so logs stay readable.
	{regexp.MustCompile(`(?i)("(?:password|confirm)"\s*:\s*)"(?:[^"\\]|\\.)*"`), `${1}"` + redacted + `"`},
	// Inline password assignments (form bodies, query strings)
	{regexp.MustCompile(`(?i)(password\s*[:=]\s*)[^\s&"]+`), "${1}" + redacted},
	// Cookie and Set-Cookie header values
	{regexp.MustCompile(`(?i)((?:set-)?cookie:\s*[^=;\s]+=)[^;\s]+`), "${1}" + redacted},
	// JWT tokens (three base64url segments)
	{regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+`), redacted},
	// Bearer tokens, minimum 20 chars to avoid false positives
	{regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`), redacted},
	// Email local-parts: "maya@example.com" becomes "m***@example.com"
	{regexp.MustCompile(`\b([A-Za-z0-9])[A-Za-z0-9._%+\-]*@([A-Za-z0-9.\-]+\.[A-Za-z]{2,})\b`), "${1}***@${2}"},
}

// Redact replaces known secret patterns in input.
// Line structure is preserved: the number of newlines in the output
// always equals the number of newlines in the input.
func Redact(input string) string {
	for _, p := range patterns {
		input = p.re.ReplaceAllString(input, p.with)
	}
	return input
}

// Bytes is Redact for byte slices, truncated to maxLen runes when maxLen > 0.
func Bytes(b []byte, maxLen int) string {
	s := Redact(string(b))
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(r[:maxLen])) + "..."
}
