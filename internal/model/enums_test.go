package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTokenSymbol(t *testing.T) {
	cases := []struct {
		text string
		want TokenSymbol
		ok   bool
	}{
		{"SOL", TokenSOL, true},
		{"sol please", TokenSOL, true},
		{"I'll take Usdc", TokenUSDC, true},
		{"usdt thanks", TokenUSDT, true},
		{"solana", "", false},
		{"BTC", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, ok := ParseTokenSymbol(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionStateHelpers(t *testing.T) {
	assert.True(t, StatePaid.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateConfirming.Terminal())

	assert.True(t, StateAwaitingDeposit.HasActiveOrder())
	assert.True(t, StatePaid.HasActiveOrder())
	assert.False(t, StateStart.HasActiveOrder())
	assert.False(t, StateAwaitingToken.HasActiveOrder())
}

func TestTokenSymbolNative(t *testing.T) {
	assert.True(t, TokenSOL.Native())
	assert.False(t, TokenUSDC.Native())
	assert.False(t, TokenUSDT.Native())
}
