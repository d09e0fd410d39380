package service

import (
	"regexp"

	"github.com/B1acB1rd/SolSwap/internal/model"
)

// Intent matching is pure keyword/pattern matching over the cleaned text.
// Categories overlap, so evaluation order is fixed:
// rate > help > transfer > sell > sent > bank > cancel > status > unknown.

var (
	rateRegex     = regexp.MustCompile(`(?i)\b(rate|rates|price|prices|quote|exchange)\b`)
	helpRegex     = regexp.MustCompile(`(?i)\b(help|how (do|does|can) (i|it|this|you)|what can you do|guide)\b`)
	transferRegex = regexp.MustCompile(`(?i)\b(transfer|send)\b`)
	sellRegex     = regexp.MustCompile(`(?i)\b(sell|swap|convert|cash ?out|off[- ]?ramp|liquidate)\b`)
	sentRegex     = regexp.MustCompile(`(?i)\b(sent|paid|deposited|transferred|done|completed)\b`)
	bankRegex     = regexp.MustCompile(`(?i)\b(bank|account number|acct|nuban)\b`)
	cancelRegex   = regexp.MustCompile(`(?i)\b(cancel|stop|abort|quit|start over|reset)\b`)
	statusRegex   = regexp.MustCompile(`(?i)\b(status|update|progress|where is)\b`)

	// Solana transaction signatures are base58, 64-88 characters.
	txSignatureRegex = regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{64,88}\b`)
)

// Classify maps cleaned text to a coarse intent category. Stateless and
// case-insensitive; the first matching category in priority order wins.
func Classify(cleaned string) model.Intent {
	switch {
	case rateRegex.MatchString(cleaned):
		return model.IntentRate
	case helpRegex.MatchString(cleaned):
		return model.IntentHelp
	case transferRegex.MatchString(cleaned):
		return model.IntentTransfer
	case sellRegex.MatchString(cleaned):
		return model.IntentSell
	case sentRegex.MatchString(cleaned), txSignatureRegex.MatchString(cleaned):
		return model.IntentSent
	case bankRegex.MatchString(cleaned):
		return model.IntentBank
	case cancelRegex.MatchString(cleaned):
		return model.IntentCancel
	case statusRegex.MatchString(cleaned):
		return model.IntentStatus
	default:
		return model.IntentUnknown
	}
}

// ExtractTxSignature pulls a transaction-signature-shaped token out of the
// text, if one is present.
func ExtractTxSignature(text string) (string, bool) {
	sig := txSignatureRegex.FindString(text)
	return sig, sig != ""
}
