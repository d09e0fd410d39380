package model

import (
	"regexp"
	"strings"
)

// SessionState is the user's current position in the sell conversation.
type SessionState string

const (
	StateStart           SessionState = "start"
	StateAwaitingToken   SessionState = "awaiting_token"
	StateAwaitingDeposit SessionState = "awaiting_deposit"
	StateConfirming      SessionState = "confirming"
	StateAwaitingBank    SessionState = "awaiting_bank"
	StateReadyToPay      SessionState = "ready_to_pay"
	StatePaid            SessionState = "paid"
	StateFailed          SessionState = "failed"
	StateCancelled       SessionState = "cancelled"
)

// Terminal reports whether the state ends the current order's flow.
// The session itself can start a new flow from a terminal state.
func (s SessionState) Terminal() bool {
	return s == StatePaid || s == StateFailed || s == StateCancelled
}

// HasActiveOrder reports whether the session state permits a linked order.
func (s SessionState) HasActiveOrder() bool {
	switch s {
	case StateAwaitingDeposit, StateConfirming, StateAwaitingBank, StateReadyToPay, StatePaid:
		return true
	}
	return false
}

// OrderStatus mirrors the subset of session states an order moves through.
type OrderStatus string

const (
	OrderStatusAwaitingDeposit OrderStatus = "awaiting_deposit"
	OrderStatusConfirming      OrderStatus = "confirming"
	OrderStatusAwaitingBank    OrderStatus = "awaiting_bank"
	OrderStatusReadyToPay      OrderStatus = "ready_to_pay"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusFailed          OrderStatus = "failed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Terminal order statuses are historical records and are never reopened.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed || s == OrderStatusCancelled
}

// Intent is the coarse classification of a user message, independent of
// conversation state.
type Intent string

const (
	IntentRate     Intent = "rate"
	IntentHelp     Intent = "help"
	IntentTransfer Intent = "transfer"
	IntentSell     Intent = "sell"
	IntentSent     Intent = "sent"
	IntentBank     Intent = "bank"
	IntentCancel   Intent = "cancel"
	IntentStatus   Intent = "status"
	IntentUnknown  Intent = "unknown"
)

// TokenSymbol is a sellable token.
type TokenSymbol string

const (
	TokenSOL  TokenSymbol = "SOL"
	TokenUSDC TokenSymbol = "USDC"
	TokenUSDT TokenSymbol = "USDT"
)

// AllTokens lists the supported tokens in display order.
var AllTokens = []TokenSymbol{TokenSOL, TokenUSDC, TokenUSDT}

// Native reports whether the token is the chain's native asset. Non-native
// tokens additionally carry a deposit token account.
func (t TokenSymbol) Native() bool {
	return t == TokenSOL
}

var tokenWordRegex = regexp.MustCompile(`(?i)\b(sol|usdc|usdt)\b`)

// ParseTokenSymbol finds the first supported token symbol appearing as a
// whole word anywhere in the text, case-insensitively.
func ParseTokenSymbol(text string) (TokenSymbol, bool) {
	m := tokenWordRegex.FindString(text)
	if m == "" {
		return "", false
	}
	return TokenSymbol(strings.ToUpper(m)), true
}
