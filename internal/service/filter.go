package service

import (
	"regexp"
)

const redactedMarker = "[REDACTED]"

// secretPatterns catch secret-shaped substrings in outgoing replies,
// whatever their source (model output or template text).
var secretPatterns = []*regexp.Regexp{
	// provider API key shapes
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{20,}\b`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
	// long hex runs resembling private keys or token hashes
	regexp.MustCompile(`\b[0-9a-fA-F]{64,}\b`),
	// long base58 runs resembling Solana private keys. The 64-char floor
	// keeps deposit addresses (32-44 chars) untouched.
	regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{64,}\b`),
	// key=value style credential leaks
	regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|password)\s*[=:]\s*\S+`),
}

// FilterReply redacts anything resembling a leaked secret from the outgoing
// reply. Applied as the last step before a reply leaves the core.
func FilterReply(text string) string {
	for _, pattern := range secretPatterns {
		text = pattern.ReplaceAllString(text, redactedMarker)
	}
	return text
}
