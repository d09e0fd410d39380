package service

import (
	"regexp"
	"strings"

	"github.com/B1acB1rd/SolSwap/internal/config"
	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
)

// dangerousPatterns short-circuit the whole turn: a match means the raw
// message is rejected before classification, with no state mutation.
var dangerousPatterns = []*regexp.Regexp{
	// credential / secret markers
	regexp.MustCompile(`(?i)private[_\s-]?key\s*[=:]`),
	regexp.MustCompile(`(?i)secret[_\s-]?key\s*[=:]`),
	regexp.MustCompile(`(?i)api[_\s-]?key\s*[=:]`),
	regexp.MustCompile(`(?i)\bpassword\s*[=:]`),
	regexp.MustCompile(`(?i)seed\s+phrase`),
	regexp.MustCompile(`(?i)mnemonic`),

	// script injection markers
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon(error|load|click)\s*=`),

	// SQL-destructive statements
	regexp.MustCompile(`(?i)\bdrop\s+(table|database)\b`),
	regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	regexp.MustCompile(`(?i)\btruncate\s+table\b`),
	regexp.MustCompile(`(?i);\s*--`),

	// shell-destructive commands
	regexp.MustCompile(`(?i)\brm\s+-rf?\b`),
	regexp.MustCompile(`(?i)\bmkfs\b`),
	regexp.MustCompile(`(?i)\bsudo\s+`),
	regexp.MustCompile(`(?i)\bchmod\s+777\b`),
}

// Sanitize validates and cleans raw message text. It rejects text matching
// any dangerous pattern, otherwise trims surrounding whitespace and silently
// truncates to the maximum message length.
func Sanitize(raw string) (string, error) {
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(raw) {
			return "", apperrors.InputRejected()
		}
	}

	cleaned := raw
	if len(cleaned) > config.MaxMessageLength {
		// Truncate on a rune boundary so multibyte text stays valid UTF-8.
		runes := []rune(cleaned)
		if len(runes) > config.MaxMessageLength {
			runes = runes[:config.MaxMessageLength]
		}
		cleaned = string(runes)
	}
	return strings.TrimSpace(cleaned), nil
}
