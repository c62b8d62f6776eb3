// Package redact scrubs sensitive material from strings before they are
// logged or persisted. Generation failures can echo the Gemini API key or
// request details, and storage failures can carry SQL text, connection
// strings, or user identifiers; both end up in job item error messages and
// API logs, so they pass through here first.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// rule pairs a pattern with its replacement. Replacements may reference
// capture groups, which keeps recognizable statement shape in place while
// the values are dropped.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order. SQL statements go first so that values
// embedded in query text are gone before the narrower patterns run, and
// paths are scrubbed before hostnames so file extensions are not mistaken
// for domains.
var rules = []rule{
	// SQL statements. The shape survives, the values do not.
	{regexp.MustCompile(`(?i)\bSELECT\s[\s\S]*?\sFROM\s[\s\S]*`), "SELECT FROM... [SQL_VALUES_REDACTED]"},
	{regexp.MustCompile(`(?i)(INSERT\s+INTO\s+[\w.]+\s*\([^)]*\)\s+VALUES)\s*\([\s\S]*`), "${1} [SQL_VALUES_REDACTED]"},
	{regexp.MustCompile(`(?i)(UPDATE\s+[\w.]+\s+SET)\s[\s\S]*`), "${1} [SQL_VALUES_REDACTED]"},
	{regexp.MustCompile(`(?i)(DELETE\s+FROM\s+[\w.]+)\s+WHERE\b[\s\S]*`), "${1} [SQL_WHERE_REDACTED]"},

	// Connection strings and credentials.
	{regexp.MustCompile(`(?i)(postgres|mysql|mongodb|db|database|connection)://[^@]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},

	// Google API keys, the shape the Gemini key takes.
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{35}\b`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// File paths.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// Stack traces.
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},

	// Identifiers that tie a message to a user or record.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`), "[REDACTED_UUID]"},

	// Error details that describe internals.
	{regexp.MustCompile(`(?:at )?line ?\d+`), "[REDACTED_LINE_NUMBER]"},
	{regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`), "[REDACTED_SYNTAX_ERROR]"},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), "[REDACTED_HOST]"},
	{regexp.MustCompile(`(?i)(?:no such file|file not found|can't open|cannot open|file error)`), "[REDACTED_FILE_ERROR]"},
}

// String redacts sensitive fragments from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts an error's message. A nil error yields an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
